package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/orca/pkg/attachment"
	"github.com/aretw0/orca/pkg/domain"
)

// Fallback messages shown when the classifier cannot help.
const (
	MsgClassifyFallback = "Biraz daha detay verebilir misiniz? Veya aşağıdan seçebilirsiniz."
	MsgConnectionError  = "Bağlantı hatası. Lütfen listeden seçin."
)

// MinClassifyConfidence is the confidence under which a suggested category is ignored.
const MinClassifyConfidence = 0.5

// SelectCategory picks a category on the product screen and moves to specs.
// Every field that depends on the category is cleared, even when the same
// category is picked again.
func (e *Engine) SelectCategory(ctx context.Context, state *domain.State, key string) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	if state.Screen != domain.ScreenProduct {
		return nil, fmt.Errorf("%w: categories are chosen on the product screen", domain.ErrTransitionNotAllowed)
	}
	if _, ok := e.catalog.Get(key); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, key)
	}
	next := e.cloneState(state)
	next.Notice = ""
	next.Draft.SelectCategory(key)
	return e.transitionTo(ctx, next, domain.ScreenSpecs), nil
}

// SetField sets one field of the current screen. See SetFields.
func (e *Engine) SetField(ctx context.Context, state *domain.State, id, value string) (*domain.State, error) {
	return e.SetFields(ctx, state, map[string]string{id: value})
}

// SetFields sets several fields of the current screen at once, in screen order.
// Every field is checked; if any fails the draft is left unchanged, the state
// carries all messages in Errors and a domain.ValidationErrors is returned.
// Contact fields are stored as typed and only checked when leaving the screen.
func (e *Engine) SetFields(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}

	ordered, err := e.orderFields(state, values)
	if err != nil {
		return nil, err
	}

	next := e.cloneState(state)
	next.Notice = ""
	next.Errors = nil
	working := next.Draft.Clone()

	var errs domain.ValidationErrors
	for _, f := range ordered {
		input := values[f.ID]
		fc := e.fieldContext(working)

		if f.ID == categoryField.ID {
			cat, ok := e.catalog.Lookup(input)
			if !ok {
				errs = append(errs, domain.ValidationError{Field: f.ID, Message: "Lütfen listeden bir kategori seçin"})
				continue
			}
			working.SelectCategory(cat.Key)
			continue
		}

		if strings.TrimSpace(input) == "" {
			if f.Optional || f.Deferred {
				clearField(f, &working)
				continue
			}
			errs = append(errs, domain.ValidationError{Field: f.ID, Message: f.required()})
			continue
		}

		value, err := f.check(input, fc, true)
		if err != nil {
			errs = append(errs, domain.ValidationError{Field: f.ID, Message: err.Error()})
			continue
		}
		f.Apply(value, &working, fc)
	}

	if len(errs) > 0 {
		return e.reject(ctx, next, errs), errs
	}

	contactChanged := working.Contact != next.Draft.Contact
	next.Draft = working
	if contactChanged {
		e.rememberContact(ctx, next)
	}
	return next, nil
}

// orderFields resolves ids to the fields of the current screen, in screen order.
func (e *Engine) orderFields(state *domain.State, values map[string]string) ([]Field, error) {
	fc := e.fieldContext(state.Draft)
	out := make([]Field, 0, len(values))
	for id := range values {
		f, ok := lookupField(state.Screen, id)
		if !ok || f.skipped(fc) {
			return nil, fmt.Errorf("%w: %q on %s", domain.ErrUnknownField, id, state.Screen)
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fieldIndex(state.Screen, out[i].ID) < fieldIndex(state.Screen, out[j].ID)
	})
	return out, nil
}

// clearField unsets a field, used when a form submits an empty optional value.
func clearField(f Field, d *domain.Draft) {
	switch f.ID {
	case dimensionsField.ID:
		d.Product.Dimensions = ""
	case notesField.ID:
		d.Product.Notes = ""
	case timelineField.ID:
		d.Timeline = ""
	case "name":
		d.Contact.Name = ""
	case "company":
		d.Contact.Company = ""
	case "phone":
		d.Contact.Phone = ""
	case "email":
		d.Contact.Email = ""
	case "city":
		d.Contact.City = ""
	}
}

// ValidateContact checks the contact block of the draft without moving.
func (e *Engine) ValidateContact(state *domain.State) domain.ValidationErrors {
	return ValidateContact(state.Draft.Contact)
}

// Attach adds a photo or voice note to the draft.
func (e *Engine) Attach(ctx context.Context, state *domain.State, a domain.Attachment) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	if err := next.Draft.AddAttachment(a); err != nil {
		return nil, err
	}
	return next, nil
}

// AttachVoiceNote adds a recorded clip and its transcript. An empty transcript
// is replaced by the placeholder so the note is never silently blank.
func (e *Engine) AttachVoiceNote(ctx context.Context, state *domain.State, a domain.Attachment, transcript string) (*domain.State, error) {
	next, err := e.Attach(ctx, state, a)
	if err != nil {
		return nil, err
	}
	next.Draft.VoiceTranscript = attachment.TranscriptOrPlaceholder(transcript)
	return next, nil
}

// RemoveAttachment deletes the attachment at index. Out of range indexes are ignored.
func (e *Engine) RemoveAttachment(ctx context.Context, state *domain.State, index int) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	next.Draft.RemoveAttachment(index)
	return next, nil
}

// SetVoiceTranscript replaces the transcript, e.g. with interim recognizer output.
func (e *Engine) SetVoiceTranscript(ctx context.Context, state *domain.State, text string) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	next.Draft.VoiceTranscript = strings.TrimSpace(text)
	return next, nil
}

// Classify searches the catalog with free text through the classifier.
// A confident match selects the category, keeps the text as notes and moves
// to specs. Anything else lands on the product list with a fallback notice.
// Classifier failures never surface as errors.
func (e *Engine) Classify(ctx context.Context, state *domain.State, text string) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	if state.Screen != domain.ScreenWelcome && state.Screen != domain.ScreenProduct {
		return nil, fmt.Errorf("%w: search is only available before specs", domain.ErrTransitionNotAllowed)
	}

	next := e.cloneState(state)
	next.Errors = nil
	if next.Screen == domain.ScreenWelcome {
		next = e.transitionTo(ctx, next, domain.ScreenProduct)
	}

	if e.classifier == nil {
		next.Notice = MsgClassifyFallback
		return next, nil
	}

	result, err := e.classifier.Categorize(ctx, strings.TrimSpace(text))
	if err != nil {
		e.logger.Warn("classification failed", "session_id", state.SessionID, "err", err)
		if errors.Is(err, domain.ErrCollaboratorUnavailable) {
			next.Notice = MsgConnectionError
		} else {
			next.Notice = MsgClassifyFallback
		}
		return next, nil
	}

	cat, ok := e.catalog.Get(result.Category)
	if !ok || result.Confidence < MinClassifyConfidence {
		e.logger.Debug("classification inconclusive", "category", result.Category, "confidence", result.Confidence)
		next.Notice = MsgClassifyFallback
		return next, nil
	}

	next.Draft.SelectCategory(cat.Key)
	next.Draft.Product.Notes = strings.TrimSpace(text)
	next = e.transitionTo(ctx, next, domain.ScreenSpecs)
	next.Notice = fmt.Sprintf("%s seçildi. Detayları birlikte belirleyelim.", cat.Label())
	if result.Reason != "" {
		next.Notice += " (" + result.Reason + ")"
	}
	return next, nil
}

// Advise asks the classifier for a free-text remark about text and shows it as a notice.
func (e *Engine) Advise(ctx context.Context, state *domain.State, text string) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	if e.classifier == nil {
		next.Notice = MsgClassifyFallback
		return next, nil
	}
	reply, err := e.classifier.Validate(ctx, strings.TrimSpace(text))
	switch {
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		next.Notice = MsgConnectionError
	case err != nil || strings.TrimSpace(reply) == "":
		next.Notice = MsgClassifyFallback
	default:
		next.Notice = strings.TrimSpace(reply)
	}
	return next, nil
}

// Submit dispatches the order over channel and completes the session.
// Dispatch problems never block completion; they show up in the outcome.
func (e *Engine) Submit(ctx context.Context, state *domain.State, channel domain.Channel) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	if state.Screen != domain.ScreenConfirm {
		return nil, fmt.Errorf("%w: submit is only possible on confirm", domain.ErrTransitionNotAllowed)
	}
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidChannel, channel)
	}

	started := e.now()
	next := e.cloneState(state)
	next.Notice = ""
	next.Draft.Channel = channel
	next.Draft.AssignOrderID(e.newOrderID(started), started)

	cat := e.category(next.Draft)
	outcome := e.dispatcher.Dispatch(ctx, next.Draft.Clone(), cat, channel)
	next.Outcome = &outcome

	next = e.transitionTo(ctx, next, domain.ScreenSuccess)
	next.Status = domain.StatusCompleted

	e.logger.Info("order submitted",
		"session_id", next.SessionID,
		"order_id", next.Draft.OrderID,
		"channel", channel,
		"email_sent", outcome.EmailSent,
	)
	if e.hooks.OnSubmit != nil {
		e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
			EventBase: e.event(next, domain.EventSubmit),
			OrderID:   next.Draft.OrderID,
			Channel:   channel,
			Category:  next.Draft.Product.Category,
			Duration:  e.now().Sub(started),
			Outcome:   outcome,
		})
	}
	return next, nil
}

// Restart discards the draft and starts over on welcome, keeping the session
// and its autofill profile.
func (e *Engine) Restart(ctx context.Context, state *domain.State) (*domain.State, error) {
	if !state.Done() {
		e.emitScreenLeave(ctx, state)
	}
	next := domain.NewState(state.SessionID)
	next.Profile = state.Profile
	e.autofill(ctx, next)
	e.emitScreenEnter(ctx, next)
	return next, nil
}

// Cancel terminates the session without submitting anything.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	e.emitScreenLeave(ctx, next)
	next.Status = domain.StatusTerminated
	next.Notice = ""
	next.Errors = nil
	return next, nil
}
