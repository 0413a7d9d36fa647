package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/orca/internal/presentation/graph"
	"github.com/aretw0/orca/pkg/ports"
)

// ListSessions prints the ids of the stored sessions.
func ListSessions(ctx context.Context, store ports.StateStore, out io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(out, "Active Sessions:")
	for _, id := range ids {
		state, err := store.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(out, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(out, "- %s\t%s\t%s\n", id, state.Screen, state.Status)
	}
	return nil
}

// InspectSession prints one session as JSON, or as a flow diagram with the
// current screen and the visited path highlighted.
func InspectSession(ctx context.Context, store ports.StateStore, id string, out io.Writer, asGraph bool) error {
	state, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	if asGraph {
		_, err := io.WriteString(out, graph.GenerateMermaid(graph.OverlayFor(state)))
		return err
	}
	data, err := json.MarshalIndent(state.Redacted(), "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RemoveSessions deletes every id, reporting each one. It keeps going past
// failures and returns them joined.
func RemoveSessions(ctx context.Context, store ports.StateStore, ids []string, out io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
