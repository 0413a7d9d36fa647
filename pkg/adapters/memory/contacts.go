package memory

import (
	"context"
	"sync"

	"github.com/aretw0/orca/pkg/domain"
)

// ContactStore implements ports.ContactStore in memory.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact
}

// NewContactStore creates an empty contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{contacts: make(map[string]domain.Contact)}
}

// LoadContact returns the saved contact when it carries a name.
func (s *ContactStore) LoadContact(ctx context.Context, profile string) (domain.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[profile]
	if !ok || c.Name == "" {
		return domain.Contact{}, false
	}
	return c, true
}

// SaveContact overwrites the saved contact.
func (s *ContactStore) SaveContact(ctx context.Context, profile string, contact domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[profile] = contact
	return nil
}
