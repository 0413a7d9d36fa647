package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventScreenEnter     EventType = "screen_enter"
	EventScreenLeave     EventType = "screen_leave"
	EventValidationError EventType = "validation_error"
	EventSubmit          EventType = "submit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// ScreenEvent represents entry or exit from a screen.
type ScreenEvent struct {
	EventBase
	Screen Screen `json:"screen"`
}

// ValidationEvent is emitted for every rejected field.
type ValidationEvent struct {
	EventBase
	Screen Screen `json:"screen"`
	Field  string `json:"field"`
}

// SubmitEvent is emitted after the dispatcher ran.
type SubmitEvent struct {
	EventBase
	OrderID  string        `json:"order_id"`
	Channel  Channel       `json:"channel"`
	Category string        `json:"category"`
	Duration time.Duration `json:"duration"`
	Outcome  Outcome       `json:"outcome"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnScreenEnter func(context.Context, *ScreenEvent)
	OnScreenLeave func(context.Context, *ScreenEvent)
	OnValidation  func(context.Context, *ValidationEvent)
	OnSubmit      func(context.Context, *SubmitEvent)
}
