package intake

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// plainPolicy is safe for concurrent use once built.
var plainPolicy = bluemonday.StrictPolicy()

// plain strips markup from user text placed in subjects and text parts.
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

type mailView struct {
	domain.OrderRequest
	Business    dispatch.Business
	Files       int
	Photos      int
	VoiceNotes  int
	CustomerTel template.URL
	BusinessTel template.URL
	WhatsAppURL template.URL
}

func newMailView(req domain.OrderRequest, b dispatch.Business) mailView {
	v := mailView{
		OrderRequest: req,
		Business:     b,
		Files:        len(req.Attachments),
		CustomerTel:  telURL(req.CustomerPhone),
		BusinessTel:  telURL(b.Phone),
		WhatsAppURL:  template.URL(dispatch.WhatsAppBaseURL + digits(b.WhatsAppNumber)),
	}
	for _, a := range req.Attachments {
		switch a.Type {
		case "image":
			v.Photos++
		case "audio":
			v.VoiceNotes++
		}
	}
	return v
}

// telURL keeps only characters a dialer accepts, so the value is safe as a URL.
func telURL(phone string) template.URL {
	d := digits(phone)
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		d = "+" + d
	}
	return template.URL("tel:" + d)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func render(name string, v mailView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SalesMail builds the email for the sales team. Replies go to the customer.
func SalesMail(req domain.OrderRequest, b dispatch.Business) (ports.Mail, error) {
	body, err := render("sales.html", newMailView(req, b))
	if err != nil {
		return ports.Mail{}, err
	}

	company := plain(req.CompanyName)
	if company == "" {
		company = "Bireysel"
	}

	m := ports.Mail{
		From:     b.Email,
		FromName: "ORCA Orman Ürünleri",
		To:       b.Email,
		ReplyTo:  req.CustomerEmail,
		Subject:  fmt.Sprintf("🔔 Yeni Sipariş Talebi: %s - %s", plain(req.OrderNumber), company),
		Text:     plain(req.OrderDetails),
		HTML:     body,
	}
	for _, a := range req.Attachments {
		name := a.Filename
		if name == "" {
			name = defaultFilename(a.Type)
		}
		m.Attachments = append(m.Attachments, ports.MailAttachment{
			Filename: name,
			Content:  a.Content,
			MIMEType: mimeType(a.Type),
		})
	}
	return m, nil
}

// CustomerMail builds the confirmation sent to the customer.
func CustomerMail(req domain.OrderRequest, b dispatch.Business) (ports.Mail, error) {
	body, err := render("customer.html", newMailView(req, b))
	if err != nil {
		return ports.Mail{}, err
	}
	return ports.Mail{
		From:     b.Email,
		FromName: "ORCA Orman Ürünleri",
		To:       req.CustomerEmail,
		Subject:  fmt.Sprintf("✅ Sipariş Talebiniz Alındı - %s", plain(req.OrderNumber)),
		Text:     plain(req.OrderDetails),
		HTML:     body,
	}, nil
}
