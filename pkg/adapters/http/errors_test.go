package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ValidationErrors{{Field: "email", Message: "x"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("load: %w", domain.ErrSessionNotFound), http.StatusNotFound},
		{domain.ErrCategoryNotFound, http.StatusNotFound},
		{domain.ErrSessionClosed, http.StatusConflict},
		{domain.ErrTransitionNotAllowed, http.StatusConflict},
		{domain.ErrCategoryRequired, http.StatusConflict},
		{domain.ErrTooManyAttachments, http.StatusConflict},
		{domain.ErrAttachmentTooLarge, http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{domain.ErrInvalidChannel, http.StatusBadRequest},
		{domain.ErrUnknownField, http.StatusBadRequest},
		{domain.ErrNotAnImage, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{runner.ErrInputTooLarge, http.StatusBadRequest},
		{runner.ErrInvalidUTF8, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "error %v", tt.err)
	}
}

func TestDecodePayload(t *testing.T) {
	data, err := decodePayload("data:image/png;base64,aGVsbG8=")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	data, err = decodePayload("aGVsbG8=")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = decodePayload("data:image/png;base64,***")
	assert.ErrorIs(t, err, errBadRequest)
}

func TestWatchFilter(t *testing.T) {
	assert.Nil(t, watchFilter(""))

	screen := domain.ScreenSpecs
	notice := "ok"
	keep := watchFilter("screen, outcome")
	assert.True(t, keep(domain.StateDiff{Screen: &screen}))
	assert.False(t, keep(domain.StateDiff{Notice: &notice}))
	assert.False(t, keep(domain.StateDiff{}))
}
