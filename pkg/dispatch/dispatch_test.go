package dispatch_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
)

func palletDraft() domain.Draft {
	return domain.Draft{
		Product: domain.Product{
			Category:     catalog.KeyPallet,
			Subcategory:  "Ahşap Palet",
			Quantity:     30,
			BelowMinimum: true,
			SizeMode:     domain.SizeStandard,
			Dimensions:   "80×120 cm",
			Usage:        domain.UsageExport,
			Notes:        domain.NotSpecified,
		},
		Contact: domain.Contact{
			Name:    "Ayşe Yılmaz",
			Company: "Yılmaz Lojistik",
			Phone:   "05321234567",
			Email:   "ayse@example.com",
			City:    "Bursa",
		},
		Timeline:    domain.TimelineUrgent,
		OrderID:     "ORC-2026-4821",
		ConfirmedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestSummary_Scenario(t *testing.T) {
	pallet := catalog.Default().MustGet(catalog.KeyPallet)
	text := dispatch.Summary(palletDraft(), pallet)

	assert.Contains(t, text, "Sipariş No: ORC-2026-4821")
	assert.Contains(t, text, "Tarih: 14.03.2026 09:30:00")
	assert.Contains(t, text, "Kategori: Palet")
	assert.Contains(t, text, "Miktar: 30 adet (minimum altı, satış onayı gerekli)")
	assert.Contains(t, text, "Kullanım: İhracat (ISPM-15 gerekli)")
	assert.Contains(t, text, "Aciliyet: Acil (Bu hafta)")
	assert.Contains(t, text, "Müşteri Notu: Belirtilmedi")
	for _, title := range []string{"YENİ SİPARİŞ TALEBİ", "ÜRÜN BİLGİLERİ", "MÜŞTERİ BİLGİLERİ", "NOTLAR & EKLER"} {
		assert.Contains(t, text, title)
	}
}

func TestSummary_IsDeterministic(t *testing.T) {
	pallet := catalog.Default().MustGet(catalog.KeyPallet)
	assert.Equal(t, dispatch.Summary(palletDraft(), pallet), dispatch.Summary(palletDraft(), pallet))
}

func TestSummary_UnsetFieldsRenderPlaceholder(t *testing.T) {
	text := dispatch.Summary(domain.Draft{}, domain.Category{})

	for _, label := range []string{
		"Sipariş No", "Tarih", "Kategori", "Ürün Tipi", "Miktar", "Boyut", "Kullanım",
		"Ad Soyad", "Firma", "Telefon", "E-posta", "Şehir", "Aciliyet", "Müşteri Notu",
	} {
		assert.Contains(t, text, label+": Belirtilmedi", label)
	}
	assert.NotContains(t, text, ": \n")
	assert.NotContains(t, text, "<nil>")
}

func TestSummary_Attachments(t *testing.T) {
	d := palletDraft()
	d.Attachments = []domain.Attachment{
		{Kind: domain.AttachmentPhoto, Filename: "a.jpg"},
		{Kind: domain.AttachmentPhoto, Filename: "b.jpg"},
		{Kind: domain.AttachmentAudio, Filename: "sesli-not-1.webm"},
	}
	d.VoiceTranscript = "iki yüz adet lazım"

	text := dispatch.Summary(d, domain.Category{})
	assert.Contains(t, text, "📎 3 dosya eklendi (2 fotoğraf, 1 sesli not)")
	assert.Contains(t, text, `Sesli Not: "iki yüz adet lazım"`)
}

func TestWhatsAppMessage_Scenario(t *testing.T) {
	d := palletDraft()
	d.Attachments = []domain.Attachment{{Kind: domain.AttachmentPhoto}}

	msg := dispatch.WhatsAppMessage(d, catalog.Default().MustGet(catalog.KeyPallet))

	assert.Contains(t, msg, "📦 ÜRÜN: Ahşap Palet")
	assert.Contains(t, msg, "🌍 Kullanım: İhracat (ISPM-15)")
	assert.Contains(t, msg, "📦 Miktar: 30 adet (minimum altı")
	assert.Contains(t, msg, "📎 1 dosya yüklendi")
	assert.Contains(t, msg, "Sipariş No: ORC-2026-4821")
	assert.NotContains(t, msg, "💬 NOT", "notes set to the placeholder are omitted")
}

func TestWhatsAppMessage_UnsetFieldsRenderPlaceholder(t *testing.T) {
	d := domain.Draft{Product: domain.Product{Category: catalog.KeyLumber}}
	msg := dispatch.WhatsAppMessage(d, catalog.Default().MustGet(catalog.KeyLumber))

	assert.Contains(t, msg, "📦 ÜRÜN: Kereste")
	for _, label := range []string{"Boyut", "Miktar", "Kullanım", "Ad", "Firma", "Tel", "Şehir", "Aciliyet", "Sipariş No"} {
		assert.Regexp(t, label+`: Belirtilmedi`, msg)
	}
}

func TestWhatsAppMessage_QuickTemplate(t *testing.T) {
	assert.Equal(t, dispatch.QuickWhatsAppMessage(), dispatch.WhatsAppMessage(domain.Draft{}, domain.Category{}))
}

func TestWhatsAppLink(t *testing.T) {
	link := dispatch.WhatsAppLink("905336605802", "Merhaba ORCA & 2+2?")

	require.True(t, strings.HasPrefix(link, "https://wa.me/905336605802?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "%20")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Merhaba ORCA & 2+2?", u.Query().Get("text"))
}

type fakeSender struct {
	err  error
	reqs []domain.OrderRequest
}

func (f *fakeSender) SendOrder(_ context.Context, req domain.OrderRequest) error {
	f.reqs = append(f.reqs, req)
	return f.err
}

type fakeOpener struct {
	urls []string
}

func (f *fakeOpener) Open(_ context.Context, u string) error {
	f.urls = append(f.urls, u)
	return nil
}

func TestDispatcher_Email(t *testing.T) {
	sender := &fakeSender{}
	opener := &fakeOpener{}
	d := dispatch.New(sender, dispatch.WithLinkOpener(opener))

	draft := palletDraft()
	draft.Attachments = []domain.Attachment{
		{Kind: domain.AttachmentPhoto, Payload: "aGk=", Filename: "a.jpg"},
		{Kind: domain.AttachmentAudio, Payload: "aGk=", Filename: "sesli-not-1.webm"},
	}
	out := d.Dispatch(context.Background(), draft, domain.Category{Name: "Palet"}, domain.ChannelEmail)

	assert.True(t, out.EmailSent)
	assert.Empty(t, out.WhatsAppLink)
	assert.Empty(t, opener.urls)
	require.Len(t, sender.reqs, 1)

	req := sender.reqs[0]
	assert.Equal(t, "ORC-2026-4821", req.OrderNumber)
	assert.Equal(t, "Ayşe Yılmaz", req.CustomerName)
	assert.Equal(t, "Yılmaz Lojistik", req.CompanyName)
	assert.Equal(t, dispatch.Summary(draft, domain.Category{Name: "Palet"}), req.OrderDetails)
	require.Len(t, req.Attachments, 2)
	assert.Equal(t, "image", req.Attachments[0].Type)
	assert.Equal(t, "audio", req.Attachments[1].Type)
	assert.Contains(t, out.Guidance, "✓ E-posta gönderildi")
}

func TestDispatcher_BothWithEmailFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	opener := &fakeOpener{}
	d := dispatch.New(sender, dispatch.WithLinkOpener(opener))

	out := d.Dispatch(context.Background(), palletDraft(), domain.Category{}, domain.ChannelBoth)

	assert.False(t, out.EmailSent)
	assert.Equal(t, "network down", out.EmailError)
	require.Len(t, opener.urls, 1, "whatsapp link is opened even when email fails")
	assert.Equal(t, out.WhatsAppLink, opener.urls[0])

	joined := strings.Join(out.Guidance, "\n")
	assert.Contains(t, joined, "0224 482 2892")
	assert.Contains(t, joined, "0533 660 5802")
	assert.Contains(t, joined, "E-posta gönderilemedi")
}

func TestDispatcher_NoSender(t *testing.T) {
	d := dispatch.New(nil)
	out := d.Dispatch(context.Background(), palletDraft(), domain.Category{}, domain.ChannelEmail)

	assert.False(t, out.EmailSent)
	assert.NotEmpty(t, out.EmailError)
}

func TestDispatcher_WhatsAppOnlyWithoutOpener(t *testing.T) {
	sender := &fakeSender{}
	d := dispatch.New(sender)

	out := d.Dispatch(context.Background(), palletDraft(), domain.Category{}, domain.ChannelWhatsApp)

	assert.Empty(t, sender.reqs)
	assert.True(t, strings.HasPrefix(out.WhatsAppLink, "https://wa.me/905336605802?text="))
	assert.Contains(t, out.Guidance, "✓ WhatsApp mesajı hazır")
}
