package dispatch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/orca/pkg/domain"
)

// WhatsAppBaseURL is the deep-link endpoint.
const WhatsAppBaseURL = "https://wa.me/"

// WhatsAppMessage renders the short order message sent through the deep link.
// A draft without a product falls back to QuickWhatsAppMessage.
func WhatsAppMessage(d domain.Draft, cat domain.Category) string {
	if d.Product.Category == "" {
		return QuickWhatsAppMessage()
	}

	product := d.Product.Subcategory
	if product == "" {
		product = categoryName(d, cat)
	}

	var b strings.Builder
	b.WriteString("🌲 ORCA Sipariş Talebi\n\n")
	fmt.Fprintf(&b, "📦 ÜRÜN: %s\n", domain.Or(product))
	fmt.Fprintf(&b, "📏 Boyut: %s\n", domain.Or(d.Product.Dimensions))
	fmt.Fprintf(&b, "📦 Miktar: %s\n", d.Product.QuantityLabel())
	fmt.Fprintf(&b, "🌍 Kullanım: %s\n\n", d.Product.Usage.Label())

	b.WriteString("👤 MÜŞTERİ:\n")
	fmt.Fprintf(&b, "Ad: %s\n", domain.Or(d.Contact.Name))
	fmt.Fprintf(&b, "Firma: %s\n", domain.Or(d.Contact.Company))
	fmt.Fprintf(&b, "Tel: %s\n", domain.Or(d.Contact.Phone))
	fmt.Fprintf(&b, "Şehir: %s\n\n", domain.Or(d.Contact.City))

	fmt.Fprintf(&b, "⏰ Aciliyet: %s", d.Timeline.Label())

	if d.Product.Notes != "" && d.Product.Notes != domain.NotSpecified {
		fmt.Fprintf(&b, "\n\n💬 NOT:\n%s", d.Product.Notes)
	}
	if d.VoiceTranscript != "" {
		fmt.Fprintf(&b, "\n\n🎤 Sesli Not:\n%q", d.VoiceTranscript)
	}
	if n := len(d.Attachments); n > 0 {
		fmt.Fprintf(&b, "\n\n📎 %d dosya yüklendi (e-postada mevcut)", n)
	}

	fmt.Fprintf(&b, "\n\nSipariş No: %s\nDetaylı teklif alabilir miyim?", domain.Or(d.OrderID))
	return b.String()
}

// QuickWhatsAppMessage is the template used before any product is chosen.
func QuickWhatsAppMessage() string {
	return "Merhaba ORCA,\n" +
		"Sipariş vermek istiyorum.\n\n" +
		"Detaylar:\n" +
		"- Ürün: \n" +
		"- Miktar: \n" +
		"- Kullanım alanı: \n" +
		"- Teslimat şehri: \n\n" +
		"Detaylı teklif alabilir miyim?"
}

// WhatsAppLink builds the deep link for number with message as prefilled text.
// Spaces are encoded as %20, matching what messaging clients expect.
func WhatsAppLink(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return WhatsAppBaseURL + number + "?text=" + text
}
