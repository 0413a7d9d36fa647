package dispatch

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Business holds the company contact points shown to customers and used for the deep link.
type Business struct {
	Phone           string `yaml:"phone" json:"phone"`
	PhoneLabel      string `yaml:"phone_label" json:"phone_label"`
	WhatsAppNumber  string `yaml:"whatsapp_number" json:"whatsapp_number"`
	WhatsAppDisplay string `yaml:"whatsapp_display" json:"whatsapp_display"`
	Email           string `yaml:"email" json:"email"`
}

// DefaultBusiness returns the ORCA contact points.
func DefaultBusiness() Business {
	return Business{
		Phone:           "0224 482 2892",
		PhoneLabel:      "Bursa",
		WhatsAppNumber:  "905336605802",
		WhatsAppDisplay: "0533 660 5802",
		Email:           "orcaahsap@orcaahsap.com",
	}
}

// Dispatcher hands a confirmed draft to the email collaborator and the WhatsApp deep link.
type Dispatcher struct {
	sender   ports.OrderSender
	opener   ports.LinkOpener
	business Business
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLinkOpener sets the component that opens the WhatsApp link.
// Without one the link is only reported in the outcome.
func WithLinkOpener(o ports.LinkOpener) Option {
	return func(d *Dispatcher) {
		d.opener = o
	}
}

// WithBusiness overrides the contact points.
func WithBusiness(b Business) Option {
	return func(d *Dispatcher) {
		d.business = b
	}
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a dispatcher. sender may be nil, in which case email submissions
// are reported as failed and the customer is pointed to the direct channels.
func New(sender ports.OrderSender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		business: DefaultBusiness(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Business returns the configured contact points.
func (d *Dispatcher) Business() Business {
	return d.business
}

// Dispatch delivers the order over channel. It never fails: collaborator
// errors are logged and reflected in the returned outcome's guidance.
func (d *Dispatcher) Dispatch(ctx context.Context, draft domain.Draft, cat domain.Category, channel domain.Channel) domain.Outcome {
	out := domain.Outcome{Channel: channel}

	if channel.IncludesEmail() {
		if err := d.sendEmail(ctx, draft, cat); err != nil {
			d.logger.Warn("order email failed", "order_id", draft.OrderID, "err", err)
			out.EmailError = err.Error()
		} else {
			out.EmailSent = true
		}
	}

	if channel.IncludesWhatsApp() {
		out.WhatsAppLink = WhatsAppLink(d.business.WhatsAppNumber, WhatsAppMessage(draft, cat))
		if d.opener != nil {
			if err := d.opener.Open(ctx, out.WhatsAppLink); err != nil {
				d.logger.Debug("could not open whatsapp link", "err", err)
			}
		}
	}

	out.Guidance = Guidance(out, d.business)
	return out
}

func (d *Dispatcher) sendEmail(ctx context.Context, draft domain.Draft, cat domain.Category) error {
	if d.sender == nil {
		return domain.ErrCollaboratorUnavailable
	}
	return d.sender.SendOrder(ctx, NewOrderRequest(draft, cat))
}

// NewOrderRequest builds the email collaborator payload from a draft.
func NewOrderRequest(draft domain.Draft, cat domain.Category) domain.OrderRequest {
	req := domain.OrderRequest{
		OrderNumber:   draft.OrderID,
		CustomerName:  draft.Contact.Name,
		CustomerEmail: draft.Contact.Email,
		CustomerPhone: draft.Contact.Phone,
		CompanyName:   draft.Contact.Company,
		OrderDetails:  Summary(draft, cat),
	}
	for _, a := range draft.Attachments {
		kind := "image"
		if a.Kind == domain.AttachmentAudio {
			kind = "audio"
		}
		req.Attachments = append(req.Attachments, domain.OrderAttachment{
			Filename: a.Filename,
			Content:  a.Payload,
			Type:     kind,
		})
	}
	return req
}

// Guidance lists what the customer should expect next. When the email could
// not be sent it points to the phone and WhatsApp numbers.
func Guidance(out domain.Outcome, b Business) []string {
	var lines []string
	if out.Channel.IncludesEmail() {
		if out.EmailSent {
			lines = append(lines, "✓ E-posta gönderildi")
		} else {
			lines = append(lines, "E-posta gönderilemedi. Lütfen bizi telefonla arayın veya WhatsApp'tan yazın.")
		}
	}
	if out.Channel.IncludesWhatsApp() {
		lines = append(lines, "✓ WhatsApp mesajı hazır")
	}
	lines = append(lines,
		"⏱️ Yanıt süresi: E-posta ~2 saat içinde, WhatsApp 10-30 dakika",
		"📞 Acil mi? "+b.Phone+" ("+b.PhoneLabel+")",
		"💬 WhatsApp: "+b.WhatsAppDisplay+" (Mobil)",
	)
	return lines
}
