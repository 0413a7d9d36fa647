package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Runner handles the conversation loop of the order engine.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdio.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Store persists the session after every step. Nil means ephemeral.
	Store ports.StateStore

	// SessionID identifies the session in Store.
	SessionID string

	// Profile enables contact autofill for new sessions.
	Profile string

	// Commands are the slash commands. Defaults to DefaultCommands.
	Commands map[string]Command

	engine       *orca.Engine
	initialState *domain.State
}

// Option configures the Runner.
type Option func(*Runner)

// WithEngine sets the engine. Required.
func WithEngine(engine *orca.Engine) Option {
	return func(r *Runner) {
		r.engine = engine
	}
}

// WithStore configures the StateStore for persistence.
func WithStore(store ports.StateStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the session ID used with the store.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithProfile sets the autofill profile for new sessions.
func WithProfile(profile string) Option {
	return func(r *Runner) {
		r.Profile = profile
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures the IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithCommands replaces the slash commands.
func WithCommands(cmds map[string]Command) Option {
	return func(r *Runner) {
		r.Commands = cmds
	}
}

// WithInitialState resumes from a given state instead of the store.
func WithInitialState(state *domain.State) Option {
	return func(r *Runner) {
		r.initialState = state
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Commands: DefaultCommands(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Engine returns the engine the runner drives.
func (r *Runner) Engine() *orca.Engine {
	return r.engine
}

// Run executes the loop until the input ends, the session is cancelled,
// a completed session receives anything but a restart, or ctx is done.
// The state is saved after every change, so an interrupted session resumes
// where it stopped.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return errors.New("runner: no engine configured")
	}

	state, err := r.resolveInitialState(ctx)
	if err != nil {
		return err
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		current := signals.Context()

		actions, _, err := r.engine.Render(current, state)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if _, err := r.Handler.Output(current, actions); err != nil {
			if current.Err() != nil {
				return r.interrupted(ctx)
			}
			return fmt.Errorf("output error: %w", err)
		}
		if state.Status == domain.StatusTerminated {
			return nil
		}

		input, err := r.Handler.Input(current)
		if err != nil {
			signals.CheckRace()
			if current.Err() != nil {
				return r.interrupted(ctx)
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		next, err := r.step(current, state, input)
		if next != nil {
			state = next
			if err := r.saveState(ctx, state); err != nil {
				return fmt.Errorf("critical persistence error: %w", err)
			}
		}
		if err == nil {
			continue
		}
		if current.Err() != nil {
			return r.interrupted(ctx)
		}

		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			// Rendered from state.Errors on the next pass.
		case errors.Is(err, domain.ErrSessionClosed):
			return nil
		case errors.Is(err, errUnknownCommand), isUserError(err):
			_ = r.Handler.SystemOutput(current, "⚠️ "+userMessage(err))
		default:
			return err
		}
	}
}

// step applies one line: a slash command or conversational input.
func (r *Runner) step(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	if name, arg, ok := parseCommand(input); ok {
		cmd, found := r.Commands[name]
		if !found {
			return nil, fmt.Errorf("%w: /%s", errUnknownCommand, name)
		}
		r.Logger.Debug("command", "name", name)
		return cmd.Run(ctx, r, state, arg)
	}
	return r.engine.Navigate(ctx, state, input)
}

func (r *Runner) interrupted(ctx context.Context) error {
	if r.Store != nil && r.SessionID != "" {
		_ = r.Handler.SystemOutput(context.WithoutCancel(ctx), fmt.Sprintf("Oturum kaydedildi. Devam etmek için: --session %s", r.SessionID))
	}
	r.Logger.Debug("runner interrupted", "session_id", r.SessionID)
	return nil
}

func (r *Runner) saveState(ctx context.Context, state *domain.State) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if err := r.Store.Save(context.WithoutCancel(ctx), r.SessionID, state); err != nil {
		return err
	}
	r.Logger.Debug("state saved", "session_id", r.SessionID, "screen", state.Screen)
	return nil
}

// resolveInitialState prefers an explicit state, then the stored session,
// then a fresh one.
func (r *Runner) resolveInitialState(ctx context.Context) (*domain.State, error) {
	if r.initialState != nil {
		return r.initialState, nil
	}
	if r.Store != nil && r.SessionID != "" {
		state, err := r.Store.Load(ctx, r.SessionID)
		if err == nil {
			r.Logger.Debug("session resumed", "session_id", r.SessionID, "screen", state.Screen)
			return state, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
	}

	state, err := r.engine.Start(ctx, r.SessionID, r.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial state: %w", err)
	}
	if err := r.saveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to initialize session %s: %w", r.SessionID, err)
	}
	return state, nil
}

// userErrors are reported to the user; the session continues.
var userErrors = []error{
	domain.ErrCategoryRequired,
	domain.ErrTransitionNotAllowed,
	domain.ErrInvalidChannel,
	domain.ErrUnknownField,
	domain.ErrCategoryNotFound,
	domain.ErrCapabilityUnavailable,
	domain.ErrNotAnImage,
	domain.ErrAttachmentTooLarge,
	domain.ErrTooManyAttachments,
	errCommandUsage,
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func userMessage(err error) string {
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}
