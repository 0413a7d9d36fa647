package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/adapters/remote"
	"github.com/aretw0/orca/pkg/domain"
)

func jsonServer(t *testing.T, status int, body any, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifier_Categorize(t *testing.T) {
	var got map[string]any
	srv := jsonServer(t, http.StatusOK, map[string]any{
		"success":  true,
		"response": "```json\n{\"category\":\"palet\",\"confidence\":0.87,\"reason\":\"ihracat paleti\"}\n```",
	}, func(r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	c := remote.NewClassifierClient(srv.URL)
	res, err := c.Categorize(context.Background(), "ihracat için 200 palet")
	require.NoError(t, err)
	assert.Equal(t, domain.Classification{Category: "palet", Confidence: 0.87, Reason: "ihracat paleti"}, res)

	assert.Equal(t, "ihracat için 200 palet", got["message"])
	assert.Equal(t, remote.TypeCategorize, got["type"])
	assert.Equal(t, map[string]any{}, got["context"])
}

func TestClassifier_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("non-2xx is unavailable", func(t *testing.T) {
		srv := jsonServer(t, http.StatusBadGateway, map[string]any{"error": "AI service error"}, nil)
		_, err := remote.NewClassifierClient(srv.URL).Categorize(ctx, "palet")
		assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	})

	t.Run("unreachable is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := remote.NewClassifierClient(url).Categorize(ctx, "palet")
		assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	})

	t.Run("timeout is unavailable", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		c := remote.NewClassifierClient(srv.URL, remote.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
		_, err := c.Categorize(ctx, "palet")
		assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	})

	t.Run("prose reply is a parse failure", func(t *testing.T) {
		srv := jsonServer(t, http.StatusOK, map[string]any{"success": true, "response": "Palet arıyorsunuz sanırım."}, nil)
		_, err := remote.NewClassifierClient(srv.URL).Categorize(ctx, "palet")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	})

	t.Run("unsuccessful reply", func(t *testing.T) {
		srv := jsonServer(t, http.StatusOK, map[string]any{"success": false, "error": "Internal server error"}, nil)
		_, err := remote.NewClassifierClient(srv.URL).Validate(ctx, "palet")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	})
}

func TestClassifier_Validate(t *testing.T) {
	var kind string
	srv := jsonServer(t, http.StatusOK, map[string]any{"success": true, "response": "  Telefon numarası eksik görünüyor.\n"}, func(r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		kind, _ = body["type"].(string)
	})

	reply, err := remote.NewClassifierClient(srv.URL).Validate(context.Background(), "Ayşe, Bursa")
	require.NoError(t, err)
	assert.Equal(t, "Telefon numarası eksik görünüyor.", reply)
	assert.Equal(t, remote.TypeValidate, kind)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, remote.StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, remote.StripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, remote.StripCodeFence(` {"a":1} `))
}

func TestOrderClient_SendOrder(t *testing.T) {
	var got domain.OrderRequest
	srv := jsonServer(t, http.StatusOK, domain.OrderResponse{Success: true, Message: "Emails sent successfully", OrderNumber: "ORC-2026-1234"}, func(r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	req := domain.OrderRequest{
		OrderNumber:   "ORC-2026-1234",
		CustomerName:  "Ayşe Yılmaz",
		CustomerEmail: "ayse@example.com",
		OrderDetails:  "📋 YENİ SİPARİŞ TALEBİ",
		Attachments:   []domain.OrderAttachment{{Filename: "palet.jpg", Content: "aGVsbG8=", Type: "image"}},
	}
	require.NoError(t, remote.NewOrderClient(srv.URL).SendOrder(context.Background(), req))
	assert.Equal(t, req, got)
}

func TestOrderClient_Rejected(t *testing.T) {
	srv := jsonServer(t, http.StatusBadRequest, domain.OrderResponse{Error: "Validation failed", Details: []string{"Valid email is required"}}, nil)
	err := remote.NewOrderClient(srv.URL).SendOrder(context.Background(), domain.OrderRequest{OrderNumber: "ORC-2026-1234"})
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	assert.Contains(t, err.Error(), "Validation failed")

	srv = jsonServer(t, http.StatusOK, domain.OrderResponse{Success: false, Error: "quota"}, nil)
	err = remote.NewOrderClient(srv.URL).SendOrder(context.Background(), domain.OrderRequest{OrderNumber: "ORC-2026-1234"})
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}
