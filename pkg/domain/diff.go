package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Screen *Screen          `json:"screen,omitempty"`
	Status *ExecutionStatus `json:"status,omitempty"`

	// Fields contains only changed draft keys (see Draft.Flatten).
	Fields map[string]any `json:"fields,omitempty"`

	// Errors is set when the validation messages changed; an empty list clears them.
	Errors *[]string `json:"errors,omitempty"`

	Notice *string `json:"notice,omitempty"`

	History *HistoryDelta `json:"history,omitempty"`

	Outcome *Outcome `json:"outcome,omitempty"`
}

// HistoryDelta represents changes to the history stack.
type HistoryDelta struct {
	Appended []Screen `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Screen != newState.Screen {
		diff.Screen = &newState.Screen
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}
	if oldState == nil || !reflect.DeepEqual(oldState.Errors, newState.Errors) {
		if oldState != nil || len(newState.Errors) > 0 {
			errs := append([]string{}, newState.Errors...)
			diff.Errors = &errs
		}
	}
	if (oldState == nil && newState.Notice != "") || (oldState != nil && oldState.Notice != newState.Notice) {
		diff.Notice = &newState.Notice
	}
	if newState.Outcome != nil && (oldState == nil || !reflect.DeepEqual(oldState.Outcome, newState.Outcome)) {
		diff.Outcome = newState.Outcome
	}

	diff.Fields = diffDraft(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffDraft(old *State, new *State) map[string]any {
	newFields := new.Draft.Flatten()
	delta := make(map[string]any)

	if old == nil {
		for k, v := range newFields {
			if !reflect.ValueOf(v).IsZero() {
				delta[k] = v
			}
		}
	} else {
		oldFields := old.Draft.Flatten()
		for k, newVal := range newFields {
			if !reflect.DeepEqual(oldFields[k], newVal) {
				delta[k] = newVal
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only history. A restart shrinks it, which is sent whole.
func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil || len(new.History) < len(old.History) {
		return &HistoryDelta{Appended: new.History}
	}
	if len(new.History) > len(old.History) {
		return &HistoryDelta{Appended: new.History[len(old.History):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Screen == nil &&
		d.Status == nil &&
		d.Errors == nil &&
		d.Notice == nil &&
		d.Outcome == nil &&
		len(d.Fields) == 0 &&
		d.History == nil
}
