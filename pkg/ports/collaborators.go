package ports

import (
	"context"

	"github.com/aretw0/orca/pkg/domain"
)

// Classifier is the free-text classification collaborator.
type Classifier interface {
	// Categorize maps a free-text product description to a category key.
	Categorize(ctx context.Context, text string) (domain.Classification, error)

	// Validate returns a free-text remark about the user's input.
	Validate(ctx context.Context, text string) (string, error)
}

// OrderSender delivers a finished order to the email collaborator.
type OrderSender interface {
	SendOrder(ctx context.Context, req domain.OrderRequest) error
}

// LinkOpener opens a URL in a new client context (browser tab, app).
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

// RateLimiter counts requests per key inside a fixed window.
type RateLimiter interface {
	// Allow records a hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// Mailer sends one transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Mail) error
}

// Mail is a provider-neutral email message.
type Mail struct {
	From        string
	FromName    string
	To          string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []MailAttachment
}

// MailAttachment is a base64 encoded file attached to a Mail.
type MailAttachment struct {
	Filename string
	Content  string
	MIMEType string
}
