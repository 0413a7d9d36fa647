package ports

import (
	"context"

	"github.com/aretw0/orca/pkg/domain"
)

// StateStore defines the interface for persisting session state.
// It lets a server process resume a draft across requests.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

// ContactStore keeps the last used contact details for autofill.
type ContactStore interface {
	// LoadContact returns the saved contact. Missing or unreadable data
	// yields false and is never an error: autofill simply does not happen.
	LoadContact(ctx context.Context, profile string) (domain.Contact, bool)

	// SaveContact overwrites the saved contact.
	SaveContact(ctx context.Context, profile string, contact domain.Contact) error
}
