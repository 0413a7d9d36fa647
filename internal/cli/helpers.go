package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/orca/internal/logging"
	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the logger of the interactive session.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.Debug("Enter Screen", "screen", e.Screen)
		},
		OnScreenLeave: func(ctx context.Context, e *domain.ScreenEvent) {
			logger.Debug("Leave Screen", "screen", e.Screen)
		},
		OnValidation: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.Debug("Rejected Answer", "screen", e.Screen, "field", e.Field)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.Debug("Order Submitted", "order_id", e.OrderID, "channel", e.Channel, "email_sent", e.Outcome.EmailSent)
		},
	}
}

// PrintCatalog lists the categories, or writes them as JSON.
func PrintCatalog(out io.Writer, cat *catalog.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.All())
	}
	for _, c := range cat.All() {
		fmt.Fprintf(out, "%s %s (%s)\n", c.Icon, c.Name, c.Key)
		if c.Description != "" {
			fmt.Fprintf(out, "   %s\n", c.Description)
		}
		for _, sub := range c.Subcategories {
			fmt.Fprintf(out, "   - %s\n", sub)
		}
		if len(c.StandardSizes) > 0 {
			fmt.Fprintf(out, "   Standart ölçüler: %d\n", len(c.StandardSizes))
		}
	}
	return nil
}
