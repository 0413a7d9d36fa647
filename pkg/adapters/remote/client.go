// Package remote implements the HTTP clients of the external collaborators:
// the classification service and the order email service.
//
// Transport failures and non-2xx replies are reported as
// domain.ErrCollaboratorUnavailable so callers can tell a network problem
// from an answer they could not use.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/orca/pkg/domain"
)

// DefaultTimeout bounds every collaborator call.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed reply ends up in an error message.
const maxErrorBody = 512

// Option configures a client.
type Option func(*client)

// WithHTTPClient replaces the default client with its 15 second timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *client) {
		if l != nil {
			cl.logger = l
		}
	}
}

type client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

func newClient(url string, opts []Option) client {
	c := client{
		url:    url,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// post sends body as JSON and decodes the reply into result.
func (c client) post(ctx context.Context, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", domain.ErrCollaboratorUnavailable, c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: POST %s: %d %s", domain.ErrCollaboratorUnavailable, c.url, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
