package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/orca/pkg/domain"
)

// ContactStore implements ports.ContactStore on Redis.
type ContactStore struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

// NewContactStore creates a contact store on client. An empty prefix means DefaultPrefix.
func NewContactStore(client *backend.Client, prefix string, logger *slog.Logger) *ContactStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ContactStore{client: client, prefix: prefix, logger: logger}
}

func (s *ContactStore) key(profile string) string {
	return s.prefix + "contact:" + profile
}

// LoadContact returns the saved contact. Errors are logged and mean no autofill.
func (s *ContactStore) LoadContact(ctx context.Context, profile string) (domain.Contact, bool) {
	val, err := s.client.Get(ctx, s.key(profile)).Bytes()
	if err != nil {
		if err != backend.Nil {
			s.logger.Debug("contact lookup failed", "err", err)
		}
		return domain.Contact{}, false
	}
	var c domain.Contact
	if err := json.Unmarshal(val, &c); err != nil || c.Name == "" {
		return domain.Contact{}, false
	}
	return c, true
}

// SaveContact overwrites the saved contact.
func (s *ContactStore) SaveContact(ctx context.Context, profile string, contact domain.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}
	if err := s.client.Set(ctx, s.key(profile), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}
