package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/orca/pkg/domain"
)

// ContactStore implements ports.ContactStore with one JSON file per profile.
type ContactStore struct {
	BasePath string
}

// NewContactStore creates a contact store under basePath.
func NewContactStore(basePath string) *ContactStore {
	if basePath == "" {
		basePath = filepath.Join(".orca", "contacts")
	}
	return &ContactStore{BasePath: basePath}
}

func (s *ContactStore) path(profile string) string {
	return filepath.Join(s.BasePath, profile+".json")
}

// LoadContact reads the saved contact. Missing, corrupt or nameless records
// all mean no autofill.
func (s *ContactStore) LoadContact(ctx context.Context, profile string) (domain.Contact, bool) {
	if checkName(profile) != nil {
		return domain.Contact{}, false
	}
	data, err := os.ReadFile(s.path(profile))
	if err != nil {
		return domain.Contact{}, false
	}
	var c domain.Contact
	if err := json.Unmarshal(data, &c); err != nil || c.Name == "" {
		return domain.Contact{}, false
	}
	return c, true
}

// SaveContact overwrites the saved contact.
func (s *ContactStore) SaveContact(ctx context.Context, profile string, contact domain.Contact) error {
	if err := checkName(profile); err != nil {
		return err
	}
	data, err := json.MarshalIndent(contact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}
	return writeAtomic(s.BasePath, s.path(profile), data)
}
