package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
)

// Render produces the view of the current state without changing it.
// Actions come in display order: screen content, system messages (errors,
// notices), then the input request. The bool reports whether the session is over.
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	if state == nil {
		return nil, false, fmt.Errorf("render: nil state")
	}

	var actions []domain.ActionRequest
	content, err := e.renderContent(state)
	if err != nil {
		return nil, false, err
	}
	if content != "" {
		actions = append(actions, domain.ActionRequest{Type: domain.ActionRenderContent, Payload: content})
	}

	for _, msg := range state.Errors {
		actions = append(actions, domain.ActionRequest{Type: domain.ActionSystemMessage, Payload: "⚠️ " + msg})
	}
	if state.Notice != "" {
		actions = append(actions, domain.ActionRequest{Type: domain.ActionSystemMessage, Payload: state.Notice})
	}

	if req := e.renderInputRequest(state); req != nil {
		actions = append(actions, *req)
	}
	return actions, state.Done(), nil
}

func (e *Engine) renderContent(state *domain.State) (string, error) {
	if state.Status == domain.StatusTerminated {
		return "Sipariş iptal edildi. Tekrar görüşmek üzere! 👋", nil
	}

	var b strings.Builder
	fc := e.fieldContext(state.Draft)

	switch state.Screen {
	case domain.ScreenWelcome:
		b.WriteString("# 🌲 ORCA Sipariş Asistanı\n\n")
		b.WriteString("Merhaba! Ahşap ambalaj ve kereste siparişiniz için buradayım.\n\n")
		b.WriteString("Başlamak için **Enter**'a basın ya da ne aradığınızı yazın (örn. *ihracat için 200 palet*).")

	case domain.ScreenProduct:
		b.WriteString("## Ürün Seçimi\n\n")
		b.WriteString(categoryField.Prompt.Text(fc) + "\n\n")
		for i, cat := range e.catalog.All() {
			fmt.Fprintf(&b, "%d. %s", i+1, cat.Label())
			if cat.Description != "" {
				fmt.Fprintf(&b, ": %s", firstLine(cat.Description))
			}
			b.WriteString("\n")
		}

	case domain.ScreenSpecs:
		if state.Field == 0 {
			fmt.Fprintf(&b, "## %s Detayları\n\n", domain.Or(fc.Category.Label()))
		}
		e.renderField(&b, state, fc)

	case domain.ScreenContact:
		if state.Field == 0 {
			b.WriteString("## İletişim Bilgileri\n\n")
		}
		e.renderField(&b, state, fc)

	case domain.ScreenConfirm:
		b.WriteString("## Sipariş Özeti\n\n")
		b.WriteString("```\n" + dispatch.Summary(state.Draft, fc.Category) + "\n```\n\n")
		b.WriteString(channelField.Prompt.Text(fc) + "\n\n")
		b.WriteString("1. 📧 E-posta ile gönder (~2 saat içinde yanıt)\n")
		b.WriteString("2. 💬 WhatsApp ile devam (anında görüşme)\n")
		b.WriteString("3. 📧💬 Her ikisi (önerilen)\n")

	case domain.ScreenSuccess:
		b.WriteString("## ✅ Talebiniz İletildi!\n\n")
		fmt.Fprintf(&b, "Sipariş No: **%s**\n\n", domain.Or(state.Draft.OrderID))
		if state.Outcome != nil {
			for _, line := range state.Outcome.Guidance {
				b.WriteString("- " + line + "\n")
			}
			if state.Outcome.WhatsAppLink != "" {
				fmt.Fprintf(&b, "\n[WhatsApp'ta aç](%s)\n", state.Outcome.WhatsAppLink)
			}
		}
		b.WriteString("\nYeni bir sipariş için **yeni** yazın.")
	}

	return b.String(), nil
}

// renderField writes the current question, with numbered options for choices.
func (e *Engine) renderField(b *strings.Builder, state *domain.State, fc FieldContext) {
	f, ok := e.CurrentField(state)
	if !ok {
		b.WriteString("Devam etmek için **Enter**'a basın.")
		return
	}
	b.WriteString(f.Prompt.Text(fc))
	if current := f.Value(state.Draft); current != "" {
		fmt.Fprintf(b, " _(şu an: %s)_", displayValue(f, state.Draft, current))
	}
	for i, c := range f.choices(fc) {
		fmt.Fprintf(b, "\n%d. %s", i+1, c.Label)
	}
}

// displayValue turns stored enum values back into their labels.
func displayValue(f Field, d domain.Draft, current string) string {
	switch f.ID {
	case sizeModeField.ID:
		return d.Product.SizeMode.Label()
	case usageField.ID:
		return d.Product.Usage.Label()
	case timelineField.ID:
		return d.Timeline.Label()
	case quantityField.ID:
		return d.Product.QuantityLabel()
	}
	return current
}

func (e *Engine) renderInputRequest(state *domain.State) *domain.ActionRequest {
	if state.Done() {
		return nil
	}
	fc := e.fieldContext(state.Draft)

	var req domain.InputRequest
	switch state.Screen {
	case domain.ScreenWelcome:
		req = domain.InputRequest{Field: "search", Type: domain.InputText, Optional: true}
	case domain.ScreenProduct:
		var options []string
		for _, cat := range e.catalog.All() {
			options = append(options, cat.Label())
		}
		req = domain.InputRequest{Field: categoryField.ID, Type: domain.InputChoice, Options: options, Default: state.Draft.Product.Category}
	default:
		f, ok := e.CurrentField(state)
		if !ok {
			req = domain.InputRequest{Field: "continue", Type: domain.InputConfirm, Optional: true}
			break
		}
		req = domain.InputRequest{
			Field:    f.ID,
			Type:     f.inputType(fc),
			Options:  labels(f.choices(fc)),
			Default:  f.Value(state.Draft),
			Optional: f.Optional || f.Value(state.Draft) != "",
		}
	}
	return &domain.ActionRequest{Type: domain.ActionRequestInput, Payload: req}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
