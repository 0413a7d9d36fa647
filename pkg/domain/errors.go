package domain

import (
	"errors"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCategoryNotFound is returned when a category key is not in the catalog.
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategoryRequired is returned when leaving the product screen without a category.
var ErrCategoryRequired = errors.New("category must be selected first")

// ErrTransitionNotAllowed is returned for moves the flow does not permit from the current screen.
var ErrTransitionNotAllowed = errors.New("transition not allowed")

// ErrSessionClosed is returned when input arrives after submission or cancellation.
var ErrSessionClosed = errors.New("session is closed")

// ErrInvalidChannel is returned for an unknown submission channel.
var ErrInvalidChannel = errors.New("invalid submission channel")

// ErrUnknownField is returned when a field ID does not exist or is not editable on the current screen.
var ErrUnknownField = errors.New("unknown field")

// ErrCollaboratorUnavailable wraps transport failures and non-2xx replies of external collaborators.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// Attachment errors.
var (
	ErrCapabilityUnavailable = errors.New("capability not supported")
	ErrNotAnImage            = errors.New("only photos are accepted (JPG, PNG)")
	ErrAttachmentTooLarge    = errors.New("attachment exceeds size limit")
	ErrTooManyAttachments    = errors.New("too many attachments")
	ErrAlreadyRecording      = errors.New("recording already in progress")
	ErrNotRecording          = errors.New("no recording in progress")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failing field of a form.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Messages returns the user-facing messages in order.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return msgs
}
