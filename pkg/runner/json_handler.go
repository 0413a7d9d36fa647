package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/orca/pkg/domain"
)

// ActionSignal carries Signal events in JSON mode.
const ActionSignal = "SIGNAL"

// JSONHandler implements IOHandler for JSON-Lines communication.
// Each Output call emits one line holding the action array.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(actions []domain.ActionRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(actions)
}

func (h *JSONHandler) Output(ctx context.Context, actions []domain.ActionRequest) (bool, error) {
	if len(actions) == 0 {
		return false, nil
	}
	if err := h.emit(actions); err != nil {
		return false, err
	}
	return needsInput(actions), nil
}

// Input accepts a JSON string or a raw line.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	return h.emit([]domain.ActionRequest{{
		Type:    ActionSignal,
		Payload: map[string]any{"name": name, "args": args},
	}})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit([]domain.ActionRequest{{Type: domain.ActionSystemMessage, Payload: msg}})
}
