package observability

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/orca/pkg/domain"
)

// Namespace prefixes every metric.
const Namespace = "orca"

// Metrics holds the collectors fed by the lifecycle hooks.
type Metrics struct {
	Registry *prometheus.Registry

	ScreenVisits     *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	OrdersSubmitted  *prometheus.CounterVec
	SubmitDuration   *prometheus.HistogramVec
	ActiveSessions   prometheus.Gauge
}

// NewMetrics registers the order flow collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ScreenVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "screen_visits_total",
			Help:      "Total number of screen entries.",
		}, []string{"screen"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validation_errors_total",
			Help:      "Rejected answers per field.",
		}, []string{"screen", "field"}),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "orders_submitted_total",
			Help:      "Submitted orders by channel, category and email result.",
		}, []string{"channel", "category", "email_sent"}),
		SubmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "submit_duration_seconds",
			Help:      "Time spent dispatching an order.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by a server.",
		}),
	}
	m.Registry.MustRegister(
		m.ScreenVisits,
		m.ValidationErrors,
		m.OrdersSubmitted,
		m.SubmitDuration,
		m.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Hooks records every event and logs it at debug level (submissions at info).
// A nil logger disables logging.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnScreenEnter: func(ctx context.Context, e *domain.ScreenEvent) {
			m.ScreenVisits.WithLabelValues(string(e.Screen)).Inc()
			if logger != nil {
				logger.DebugContext(ctx, "screen_enter", "session_id", e.SessionID, "screen", e.Screen)
			}
		},
		OnScreenLeave: func(ctx context.Context, e *domain.ScreenEvent) {
			if logger != nil {
				logger.DebugContext(ctx, "screen_leave", "session_id", e.SessionID, "screen", e.Screen)
			}
		},
		OnValidation: func(ctx context.Context, e *domain.ValidationEvent) {
			m.ValidationErrors.WithLabelValues(string(e.Screen), e.Field).Inc()
			if logger != nil {
				logger.DebugContext(ctx, "validation_error", "session_id", e.SessionID, "screen", e.Screen, "field", e.Field)
			}
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			m.OrdersSubmitted.WithLabelValues(string(e.Channel), e.Category, strconv.FormatBool(e.Outcome.EmailSent)).Inc()
			m.SubmitDuration.WithLabelValues(string(e.Channel)).Observe(e.Duration.Seconds())
			if logger != nil {
				logger.InfoContext(ctx, "order_submitted",
					"session_id", e.SessionID,
					"order_id", e.OrderID,
					"channel", e.Channel,
					"category", e.Category,
					"email_sent", e.Outcome.EmailSent,
					"duration", e.Duration,
				)
			}
		},
	}
}

// MergeHooks calls every non-nil hook of each set in order.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks
	for _, h := range sets {
		merged.OnScreenEnter = chain(merged.OnScreenEnter, h.OnScreenEnter)
		merged.OnScreenLeave = chain(merged.OnScreenLeave, h.OnScreenLeave)
		merged.OnValidation = chain(merged.OnValidation, h.OnValidation)
		merged.OnSubmit = chain(merged.OnSubmit, h.OnSubmit)
	}
	return merged
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
