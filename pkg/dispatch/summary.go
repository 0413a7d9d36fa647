package dispatch

import (
	"fmt"
	"strings"

	"github.com/aretw0/orca/pkg/domain"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// dateLayout matches the Turkish locale rendering (dd.mm.yyyy hh:mm:ss).
const dateLayout = "02.01.2006 15:04:05"

// Source names the channel the order came through.
const Source = "ORCA Sipariş Asistanı"

// Summary renders the draft as the plain-text order that is emailed and logged.
// The output depends only on its arguments.
func Summary(d domain.Draft, cat domain.Category) string {
	var b strings.Builder

	section(&b, "📋 YENİ SİPARİŞ TALEBİ")
	line(&b, "Sipariş No", d.OrderID)
	if d.ConfirmedAt.IsZero() {
		line(&b, "Tarih", "")
	} else {
		line(&b, "Tarih", d.ConfirmedAt.Format(dateLayout))
	}
	line(&b, "Kaynak", Source)
	b.WriteString("\n")

	section(&b, "ÜRÜN BİLGİLERİ")
	line(&b, "Kategori", categoryName(d, cat))
	line(&b, "Ürün Tipi", d.Product.Subcategory)
	line(&b, "Miktar", d.Product.QuantityLabel())
	if d.Product.SizeMode != "" {
		line(&b, "Ölçü Tipi", d.Product.SizeMode.Label())
	}
	line(&b, "Boyut", d.Product.Dimensions)
	line(&b, "Kullanım", usageSummary(d.Product.Usage))
	b.WriteString("\n")

	section(&b, "MÜŞTERİ BİLGİLERİ")
	line(&b, "Ad Soyad", d.Contact.Name)
	line(&b, "Firma", d.Contact.Company)
	line(&b, "Telefon", d.Contact.Phone)
	line(&b, "E-posta", d.Contact.Email)
	line(&b, "Şehir", d.Contact.City)
	line(&b, "Aciliyet", d.Timeline.Label())
	b.WriteString("\n")

	section(&b, "NOTLAR & EKLER")
	line(&b, "Müşteri Notu", d.Product.Notes)
	if d.VoiceTranscript != "" {
		fmt.Fprintf(&b, "Sesli Not: %q\n", d.VoiceTranscript)
	}
	if n := len(d.Attachments); n > 0 {
		fmt.Fprintf(&b, "📎 %s\n", attachmentCount(d))
	}
	b.WriteString("\n")
	b.WriteString(rule)

	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString(rule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(rule + "\n\n")
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(label + ": " + domain.Or(value) + "\n")
}

func categoryName(d domain.Draft, cat domain.Category) string {
	if cat.Name != "" {
		return cat.Name
	}
	return d.Product.Category
}

func usageSummary(u domain.Usage) string {
	if u == domain.UsageExport {
		return "İhracat (ISPM-15 gerekli)"
	}
	return u.Label()
}

// attachmentCount describes the attachments, e.g. "3 dosya eklendi (2 fotoğraf, 1 sesli not)".
func attachmentCount(d domain.Draft) string {
	photos := d.CountAttachments(domain.AttachmentPhoto)
	voices := d.CountAttachments(domain.AttachmentAudio)
	parts := make([]string, 0, 2)
	if photos > 0 {
		parts = append(parts, fmt.Sprintf("%d fotoğraf", photos))
	}
	if voices > 0 {
		parts = append(parts, fmt.Sprintf("%d sesli not", voices))
	}
	return fmt.Sprintf("%d dosya eklendi (%s)", len(d.Attachments), strings.Join(parts, ", "))
}
