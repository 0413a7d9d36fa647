package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/aretw0/orca/pkg/ports"
)

// DefaultSendGridHost is the SendGrid API endpoint.
const DefaultSendGridHost = "https://api.sendgrid.com"

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	host   string
}

// NewSendGridMailer creates a mailer. host may be empty for the public API.
func NewSendGridMailer(apiKey, host string) *SendGridMailer {
	if host == "" {
		host = DefaultSendGridHost
	}
	return &SendGridMailer{apiKey: apiKey, host: host}
}

// Send implements ports.Mailer.
func (s *SendGridMailer) Send(ctx context.Context, msg ports.Mail) error {
	m := mail.NewSingleEmail(
		mail.NewEmail(msg.FromName, msg.From),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	for _, a := range msg.Attachments {
		att := mail.NewAttachment()
		att.SetContent(a.Content)
		att.SetType(a.MIMEType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}

	req := sendgrid.GetRequest(s.apiKey, "/v3/mail/send", s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(m)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes mail to a logger instead of sending it. It serves local runs
// without an API key.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements ports.Mailer.
func (l LogMailer) Send(_ context.Context, msg ports.Mail) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Info("mail",
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
		"text", msg.Text,
	)
	return nil
}
