package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/internal/config"
	"github.com/aretw0/orca/internal/presentation/tui"
	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
)

// pacing spaces out the messages of a screen on a terminal.
const pacing = 250 * time.Millisecond

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config *config.Config
	// SessionID resumes a stored session. Empty starts a new one.
	SessionID string
	// Fresh discards the stored session before starting.
	Fresh bool
	JSON  bool
	Debug bool
	// NoBrowser keeps WhatsApp links on screen instead of opening them.
	NoBrowser bool

	In  io.Reader
	Out io.Writer
}

// RunSession runs one conversational order session on the terminal.
func RunSession(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	stack, err := NewStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	var extra []orca.Option
	if !opts.NoBrowser && !opts.JSON {
		extra = append(extra, orca.WithLinkOpener(dispatch.BrowserOpener{}))
	}
	if opts.Debug {
		extra = append(extra, orca.WithLifecycleHooks(createDebugHooks(logger)))
	}
	engine, err := NewEngine(ctx, cfg, stack, logger, extra...)
	if err != nil {
		return err
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	} else if opts.Fresh {
		if err := stack.Store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session %s: %w", sessionID, err)
		}
	}

	handler, err := newIOHandler(opts)
	if err != nil {
		return err
	}
	if !opts.JSON {
		tui.PrintBanner(opts.Out)
		fmt.Fprintf(opts.Out, ">>> Oturum: %s\n\n", sessionID)
	}

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithStore(stack.Store),
		runner.WithSessionID(sessionID),
		runner.WithProfile(cfg.Profile),
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	)
	logger.Info("session started", "session_id", sessionID, "store", cfg.Store.Backend)
	return r.Run(ctx)
}

// NewSessionID returns a short id that is easy to type after --session.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

func newIOHandler(opts RunOptions) (runner.IOHandler, error) {
	if opts.JSON {
		return runner.NewJSONHandler(opts.In, opts.Out), nil
	}

	f, _ := opts.Out.(*os.File)
	if !tui.IsTerminal(f) {
		render, err := tui.NewPlainRenderer(tui.DefaultWidth)
		if err != nil {
			return nil, err
		}
		return runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(render)), nil
	}

	render, err := tui.NewRenderer(tui.Width(f))
	if err != nil {
		return nil, err
	}
	return runner.NewTextHandler(opts.In, opts.Out,
		runner.WithTextHandlerRenderer(render),
		runner.WithPacing(pacing),
	), nil
}
