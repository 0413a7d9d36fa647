package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/orca/pkg/domain"
)

// TextHandler implements the interactive terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Pacing is the pause between consecutive messages, which makes staged
	// output read like a conversation. Zero prints everything at once.
	Pacing time.Duration

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption configures a TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithPacing sets the delay between messages.
func WithPacing(d time.Duration) TextHandlerOption {
	return func(h *TextHandler) {
		h.Pacing = d
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honor cancellation.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			close(h.inputChan)
			return
		}
	}
}

// pause waits between messages. It reports false when ctx ended first.
func (h *TextHandler) pause(ctx context.Context) bool {
	if h.Pacing <= 0 {
		return true
	}
	t := time.NewTimer(h.Pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (h *TextHandler) Output(ctx context.Context, actions []domain.ActionRequest) (bool, error) {
	printed := 0
	for _, act := range actions {
		var text string
		switch act.Type {
		case domain.ActionRenderContent:
			msg, ok := act.Payload.(string)
			if !ok {
				continue
			}
			text = msg
			if h.Renderer != nil {
				if rendered, err := h.Renderer(msg); err == nil {
					text = rendered
				}
			}
		case domain.ActionSystemMessage:
			msg, ok := act.Payload.(string)
			if !ok {
				continue
			}
			text = msg
		default:
			continue
		}

		if printed > 0 && !h.pause(ctx) {
			return false, ctx.Err()
		}
		fmt.Fprintln(h.Writer, strings.TrimSpace(text))
		printed++
	}
	return needsInput(actions), nil
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Hata: %v. Lütfen tekrar deneyin.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// Signal prints the running transcript on a single updating line.
func (h *TextHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	if name == SignalTranscript {
		fmt.Fprintf(h.Writer, "\r🎤 %v", args["text"])
	}
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	fmt.Fprintf(h.Writer, "\n%s\n", msg)
	return nil
}
