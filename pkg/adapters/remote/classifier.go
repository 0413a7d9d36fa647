package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/orca/pkg/domain"
)

// Request types understood by the classification service.
const (
	TypeCategorize = "categorize"
	TypeValidate   = "validate"
)

type classifyRequest struct {
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Context map[string]any `json:"context"`
}

type classifyResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// ClassifierClient talks to the classification service. It implements ports.Classifier.
type ClassifierClient struct {
	client
}

// NewClassifierClient creates a client for the service at url.
func NewClassifierClient(url string, opts ...Option) *ClassifierClient {
	return &ClassifierClient{client: newClient(url, opts)}
}

// Categorize asks for the category of a free-text product description.
// The service answers with JSON, possibly wrapped in a markdown code fence.
func (c *ClassifierClient) Categorize(ctx context.Context, text string) (domain.Classification, error) {
	reply, err := c.ask(ctx, TypeCategorize, text)
	if err != nil {
		return domain.Classification{}, err
	}

	var out domain.Classification
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), &out); err != nil {
		c.logger.Debug("unparseable classification", "reply", reply, "err", err)
		return domain.Classification{}, fmt.Errorf("parse classification: %w", err)
	}
	return out, nil
}

// Validate asks for a free-text remark about text.
func (c *ClassifierClient) Validate(ctx context.Context, text string) (string, error) {
	reply, err := c.ask(ctx, TypeValidate, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *ClassifierClient) ask(ctx context.Context, kind, text string) (string, error) {
	var resp classifyResponse
	err := c.post(ctx, classifyRequest{Message: text, Type: kind, Context: map[string]any{}}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Response == "" {
		return "", errors.New("classifier returned no answer: " + resp.Error)
	}
	return resp.Response, nil
}

// StripCodeFence removes ``` and ```json markers around a reply.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
