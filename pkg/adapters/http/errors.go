package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var verrs domain.ValidationErrors
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrTransitionNotAllowed),
		errors.Is(err, domain.ErrCategoryRequired),
		errors.Is(err, domain.ErrTooManyAttachments):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAttachmentTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrNotAnImage),
		errors.Is(err, domain.ErrCapabilityUnavailable),
		errors.Is(err, errBadRequest),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeError(w, status, msg)
}
