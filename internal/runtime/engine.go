package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Dispatcher delivers a confirmed draft. Implementations must not fail:
// problems are reported through the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, draft domain.Draft, cat domain.Category, channel domain.Channel) domain.Outcome
}

// Engine is the order flow state machine.
// It never mutates the state it receives: every operation returns a new snapshot.
type Engine struct {
	catalog     *catalog.Catalog
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	now         func() time.Time
	newOrderID  func(time.Time) string
	minQuantity int
	classifier  ports.Classifier
	dispatcher  Dispatcher
	contacts    ports.ContactStore
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOrderIDGenerator replaces the default ORC-<year>-<nnnn> generator.
func WithOrderIDGenerator(gen func(time.Time) string) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newOrderID = gen
		}
	}
}

// WithMinimumQuantity sets the quantity under which orders are flagged for sales approval.
func WithMinimumQuantity(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.minQuantity = n
		}
	}
}

// WithClassifier enables free-text category search.
func WithClassifier(c ports.Classifier) EngineOption {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithDispatcher sets the component that delivers submitted orders.
func WithDispatcher(d Dispatcher) EngineOption {
	return func(e *Engine) {
		if d != nil {
			e.dispatcher = d
		}
	}
}

// WithContactStore enables contact autofill for sessions started with a profile.
func WithContactStore(s ports.ContactStore) EngineOption {
	return func(e *Engine) {
		e.contacts = s
	}
}

// NewEngine creates an engine over the given catalog.
func NewEngine(cat *catalog.Catalog, opts ...EngineOption) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	e := &Engine{
		catalog:     cat,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		newOrderID:  NewOrderID,
		minQuantity: DefaultMinimumQuantity,
		dispatcher:  noopDispatcher{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine serves.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// MinimumQuantity returns the configured minimum order size.
func (e *Engine) MinimumQuantity() int {
	return e.minQuantity
}

// Start creates a fresh session on the welcome screen.
// A non-empty profile enables contact autofill from the ContactStore.
func (e *Engine) Start(ctx context.Context, sessionID, profile string) (*domain.State, error) {
	state := domain.NewState(sessionID)
	state.Profile = profile
	e.autofill(ctx, state)
	e.emitScreenEnter(ctx, state)
	return state, nil
}

// autofill copies the saved contact into the draft. Absent or unreadable
// records, and records without a name, are ignored.
func (e *Engine) autofill(ctx context.Context, state *domain.State) {
	if e.contacts == nil || state.Profile == "" {
		return
	}
	contact, ok := e.contacts.LoadContact(ctx, state.Profile)
	if !ok || contact.Name == "" {
		return
	}
	state.Draft.Contact = contact
	e.logger.Debug("contact autofilled", "session_id", state.SessionID)
}

func (e *Engine) rememberContact(ctx context.Context, state *domain.State) {
	if e.contacts == nil || state.Profile == "" {
		return
	}
	if err := e.contacts.SaveContact(ctx, state.Profile, state.Draft.Contact); err != nil {
		e.logger.Warn("failed to save contact for autofill", "session_id", state.SessionID, "err", err)
	}
}

// category returns the selected category of the draft, or the zero value.
func (e *Engine) category(d domain.Draft) domain.Category {
	if d.Product.Category == "" {
		return domain.Category{}
	}
	cat, _ := e.catalog.Get(d.Product.Category)
	return cat
}

func (e *Engine) fieldContext(d domain.Draft) FieldContext {
	return FieldContext{Draft: d, Category: e.category(d), MinQuantity: e.minQuantity}
}

func (e *Engine) cloneState(src *domain.State) *domain.State {
	return src.Snapshot()
}

func (e *Engine) event(state *domain.State, t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}

func (e *Engine) emitScreenEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnScreenEnter != nil {
		e.hooks.OnScreenEnter(ctx, &domain.ScreenEvent{EventBase: e.event(state, domain.EventScreenEnter), Screen: state.Screen})
	}
}

func (e *Engine) emitScreenLeave(ctx context.Context, state *domain.State) {
	if e.hooks.OnScreenLeave != nil {
		e.hooks.OnScreenLeave(ctx, &domain.ScreenEvent{EventBase: e.event(state, domain.EventScreenLeave), Screen: state.Screen})
	}
}

func (e *Engine) emitValidation(ctx context.Context, state *domain.State, errs domain.ValidationErrors) {
	if e.hooks.OnValidation == nil {
		return
	}
	for _, v := range errs {
		e.hooks.OnValidation(ctx, &domain.ValidationEvent{
			EventBase: e.event(state, domain.EventValidationError),
			Screen:    state.Screen,
			Field:     v.Field,
		})
	}
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(_ context.Context, _ domain.Draft, _ domain.Category, channel domain.Channel) domain.Outcome {
	return domain.Outcome{Channel: channel}
}
