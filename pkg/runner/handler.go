package runner

import (
	"context"

	"github.com/aretw0/orca/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the actions to the user.
	// Returns true if the actions include an input request.
	Output(ctx context.Context, actions []domain.ActionRequest) (bool, error)

	// Input reads a response from the user.
	Input(ctx context.Context) (string, error)

	// Signal notifies the handler of an event such as a running transcript.
	// It gives visual feedback without blocking input.
	Signal(ctx context.Context, name string, args map[string]any) error

	// SystemOutput presents a meta-message (command results, errors) distinct
	// from screen content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is printed, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

func needsInput(actions []domain.ActionRequest) bool {
	for _, act := range actions {
		if act.Type == domain.ActionRequestInput {
			return true
		}
	}
	return false
}
