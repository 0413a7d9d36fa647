package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	var logs bytes.Buffer
	hooks := m.Hooks(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	hooks.OnScreenEnter(ctx, &domain.ScreenEvent{Screen: domain.ScreenProduct})
	hooks.OnScreenEnter(ctx, &domain.ScreenEvent{Screen: domain.ScreenProduct})
	hooks.OnScreenLeave(ctx, &domain.ScreenEvent{Screen: domain.ScreenProduct})
	hooks.OnValidation(ctx, &domain.ValidationEvent{Screen: domain.ScreenContact, Field: "phone"})
	hooks.OnSubmit(ctx, &domain.SubmitEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		OrderID:   "ORC-2026-0001",
		Channel:   domain.ChannelBoth,
		Category:  "pallet",
		Duration:  20 * time.Millisecond,
		Outcome:   domain.Outcome{EmailSent: true},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScreenVisits.WithLabelValues("product")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrors.WithLabelValues("contact", "phone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersSubmitted.WithLabelValues("both", "pallet", "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SubmitDuration))

	assert.Contains(t, logs.String(), "order_submitted")
	assert.Contains(t, logs.String(), "order_id=ORC-2026-0001")
}

func TestMetrics_NilLogger(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks(nil)
	assert.NotPanics(t, func() {
		hooks.OnScreenEnter(context.Background(), &domain.ScreenEvent{Screen: domain.ScreenWelcome})
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ScreenVisits.WithLabelValues("welcome").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `orca_screen_visits_total{screen="welcome"} 1`)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnSubmit: func(context.Context, *domain.SubmitEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnSubmit:      func(context.Context, *domain.SubmitEvent) { calls = append(calls, "b") },
		OnScreenEnter: func(context.Context, *domain.ScreenEvent) { calls = append(calls, "enter") },
	}

	merged := observability.MergeHooks(a, domain.LifecycleHooks{}, b)
	merged.OnSubmit(context.Background(), &domain.SubmitEvent{})
	merged.OnScreenEnter(context.Background(), &domain.ScreenEvent{})

	assert.Equal(t, []string{"a", "b", "enter"}, calls)
	assert.Nil(t, merged.OnValidation)
}
