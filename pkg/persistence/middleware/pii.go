package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Mask replaces masked values.
const Mask = "***"

// DefaultPIIPatterns cover the customer's name, phone and email.
var DefaultPIIPatterns = []string{`^contact\.(name|phone|email)$`}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks draft text fields whose dotted key (as produced by
// domain.Draft.Flatten, e.g. "contact.phone") matches any pattern. The key
// "attachments" drops attachment payloads. Only finished sessions are
// masked: hosts reload active drafts on every request and must get them back
// intact. Masked states are stored lossy.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	if !state.Done() {
		return m.next.Save(ctx, sessionID, state)
	}
	// The engine still holds state; mask a copy.
	masked := state.Snapshot()
	m.mask(&masked.Draft)
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) mask(d *domain.Draft) {
	fields := map[string]*string{
		"product.dimensions": &d.Product.Dimensions,
		"product.notes":      &d.Product.Notes,
		"contact.name":       &d.Contact.Name,
		"contact.company":    &d.Contact.Company,
		"contact.phone":      &d.Contact.Phone,
		"contact.email":      &d.Contact.Email,
		"contact.city":       &d.Contact.City,
		"voice_transcript":   &d.VoiceTranscript,
	}
	for key, value := range fields {
		if *value != "" && m.matches(key) {
			*value = Mask
		}
	}
	if m.matches("attachments") {
		for i := range d.Attachments {
			d.Attachments[i].Payload = ""
		}
	}
}
