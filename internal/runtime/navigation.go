package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
)

// Commands recognized on every screen.
var (
	exitCommands    = []string{"exit", "quit", "cancel", "iptal", "çıkış", "cikis"}
	backCommands    = []string{"back", "geri"}
	restartCommands = []string{"restart", "yeniden", "yeni", "yeni sipariş", "new"}
	editCommands    = []string{"düzenle", "duzenle", "edit", "hayır", "hayir", "no"}
	startWords      = []string{"başla", "basla", "start", "evet", "yes", "tamam"}
)

func isOneOf(input string, words []string) bool {
	needle := catalog.Fold(input)
	for _, w := range words {
		if needle == catalog.Fold(w) {
			return true
		}
	}
	return false
}

// Next moves one screen forward, enforcing the guards of each screen.
// Leaving contact with invalid fields keeps the state on contact with every
// message in Errors and returns a domain.ValidationErrors.
func (e *Engine) Next(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	next := e.cloneState(state)
	next.Notice = ""

	switch state.Screen {
	case domain.ScreenWelcome:
		return e.transitionTo(ctx, next, domain.ScreenProduct), nil
	case domain.ScreenProduct:
		if state.Draft.Product.Category == "" {
			return nil, domain.ErrCategoryRequired
		}
		return e.transitionTo(ctx, next, domain.ScreenSpecs), nil
	case domain.ScreenSpecs:
		return e.transitionTo(ctx, next, domain.ScreenContact), nil
	case domain.ScreenContact:
		if errs := ValidateContact(state.Draft.Contact); len(errs) > 0 {
			return e.reject(ctx, next, errs), errs
		}
		return e.transitionTo(ctx, next, domain.ScreenConfirm), nil
	}
	return nil, fmt.Errorf("%w: no next screen after %s", domain.ErrTransitionNotAllowed, state.Screen)
}

// Back moves one screen backwards. The draft is kept.
func (e *Engine) Back(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	i := state.Screen.Index()
	if i <= 0 || state.Screen == domain.ScreenSuccess {
		return nil, fmt.Errorf("%w: cannot go back from %s", domain.ErrTransitionNotAllowed, state.Screen)
	}
	next := e.cloneState(state)
	next.Notice = ""
	return e.transitionTo(ctx, next, domain.Screens[i-1]), nil
}

// Goto jumps to an earlier screen, or one screen forward through Next.
func (e *Engine) Goto(ctx context.Context, state *domain.State, target domain.Screen) (*domain.State, error) {
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}
	from, to := state.Screen.Index(), target.Index()
	switch {
	case to < 0:
		return nil, fmt.Errorf("%w: unknown screen %q", domain.ErrTransitionNotAllowed, target)
	case to == from:
		return e.cloneState(state), nil
	case to == from+1:
		return e.Next(ctx, state)
	case to < from && target != domain.ScreenSuccess:
		next := e.cloneState(state)
		next.Notice = ""
		return e.transitionTo(ctx, next, target), nil
	}
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrTransitionNotAllowed, state.Screen, target)
}

// transitionTo moves an already cloned state to target.
func (e *Engine) transitionTo(ctx context.Context, state *domain.State, target domain.Screen) *domain.State {
	e.emitScreenLeave(ctx, state)

	state.Screen = target
	state.Field = 0
	state.Errors = nil
	state.History = append(state.History, target)

	if target == domain.ScreenConfirm {
		now := e.now()
		if state.Draft.AssignOrderID(e.newOrderID(now), now) {
			e.logger.Debug("order id assigned", "session_id", state.SessionID, "order_id", state.Draft.OrderID)
		}
	}

	e.emitScreenEnter(ctx, state)
	return state
}

// reject records validation failures on an already cloned state.
func (e *Engine) reject(ctx context.Context, state *domain.State, errs domain.ValidationErrors) *domain.State {
	state.Errors = errs.Messages()
	e.emitValidation(ctx, state, errs)
	return state
}

// Navigate applies one line of conversational input to the current screen.
//
// Commands (exit, back, restart) are honored everywhere. On the welcome and
// product screens free text goes to the classifier. On specs and contact the
// input answers the current field and the walk advances. On confirm the input
// picks a channel and submits, or returns to editing.
//
// A rejected answer returns the state with Errors set together with a
// domain.ValidationErrors; callers re-render and ask again.
func (e *Engine) Navigate(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	switch {
	case isOneOf(input, restartCommands):
		return e.Restart(ctx, state)
	case state.Done():
		return nil, domain.ErrSessionClosed
	case isOneOf(input, exitCommands):
		return e.Cancel(ctx, state)
	case isOneOf(input, backCommands):
		return e.Back(ctx, state)
	}

	switch state.Screen {
	case domain.ScreenWelcome:
		if catalog.Fold(input) == "" || isOneOf(input, startWords) {
			return e.Next(ctx, state)
		}
		return e.Classify(ctx, state, input)

	case domain.ScreenProduct:
		if catalog.Fold(input) == "" {
			if state.Draft.Product.Category != "" {
				return e.Next(ctx, state)
			}
			next := e.cloneState(state)
			errs := domain.ValidationErrors{{Field: categoryField.ID, Message: "Lütfen bir kategori seçin"}}
			return e.reject(ctx, next, errs), errs
		}
		if cat, ok := e.catalog.Lookup(input); ok {
			return e.SelectCategory(ctx, state, cat.Key)
		}
		return e.Classify(ctx, state, input)

	case domain.ScreenSpecs, domain.ScreenContact:
		return e.answer(ctx, state, input)

	case domain.ScreenConfirm:
		if isOneOf(input, editCommands) {
			return e.Back(ctx, state)
		}
		c, ok := matchChoice(input, channelChoices)
		if !ok {
			next := e.cloneState(state)
			errs := domain.ValidationErrors{{Field: channelField.ID, Message: "Lütfen E-posta, WhatsApp veya Her ikisi seçin"}}
			return e.reject(ctx, next, errs), errs
		}
		return e.Submit(ctx, state, domain.Channel(c.Value))
	}

	return nil, fmt.Errorf("%w: no input expected on %s", domain.ErrTransitionNotAllowed, state.Screen)
}

// currentField returns the field under the cursor, skipping hidden ones.
func (e *Engine) currentField(state *domain.State) (Field, int, bool) {
	fields := screenFields[state.Screen]
	fc := e.fieldContext(state.Draft)
	for i := state.Field; i < len(fields); i++ {
		if !fields[i].skipped(fc) {
			return fields[i], i, true
		}
	}
	return Field{}, len(fields), false
}

// CurrentField returns the question awaiting an answer, if any.
func (e *Engine) CurrentField(state *domain.State) (Field, bool) {
	f, _, ok := e.currentField(state)
	return f, ok
}

// answer feeds input to the field under the cursor and advances the walk.
// When the screen runs out of fields the flow moves on through Next.
func (e *Engine) answer(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	f, idx, ok := e.currentField(state)
	if !ok {
		return e.Next(ctx, state)
	}

	next := e.cloneState(state)
	next.Notice = ""
	next.Errors = nil
	fc := e.fieldContext(next.Draft)

	if catalog.Fold(input) == "" {
		if f.Value(next.Draft) == "" && !f.Optional {
			errs := domain.ValidationErrors{{Field: f.ID, Message: f.required()}}
			return e.reject(ctx, next, errs), errs
		}
	} else {
		value, err := f.check(input, fc, false)
		if err != nil {
			errs := domain.ValidationErrors{{Field: f.ID, Message: err.Error()}}
			return e.reject(ctx, next, errs), errs
		}
		f.Apply(value, &next.Draft, fc)
		if state.Screen == domain.ScreenContact {
			e.rememberContact(ctx, next)
		}
	}

	next.Field = idx + 1
	if _, _, more := e.currentField(next); more {
		return next, nil
	}

	advanced, err := e.Next(ctx, next)
	if err != nil {
		var errs domain.ValidationErrors
		if errors.As(err, &errs) {
			// Walk back to the first failing contact field.
			advanced.Field = fieldIndex(advanced.Screen, errs[0].Field)
			return advanced, errs
		}
		return nil, err
	}
	return advanced, nil
}

func fieldIndex(screen domain.Screen, id string) int {
	for i, f := range screenFields[screen] {
		if f.ID == id {
			return i
		}
	}
	return 0
}
