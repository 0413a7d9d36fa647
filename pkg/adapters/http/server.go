package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/session"
)

// Engine is the part of the order flow the API drives.
type Engine interface {
	Catalog() *catalog.Catalog
	QuickWhatsAppLink() string

	Start(ctx context.Context, sessionID, profile string) (*domain.State, error)
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)
	Navigate(ctx context.Context, state *domain.State, input string) (*domain.State, error)
	SelectCategory(ctx context.Context, state *domain.State, key string) (*domain.State, error)
	SetFields(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error)
	Next(ctx context.Context, state *domain.State) (*domain.State, error)
	Back(ctx context.Context, state *domain.State) (*domain.State, error)
	Goto(ctx context.Context, state *domain.State, target domain.Screen) (*domain.State, error)
	Attach(ctx context.Context, state *domain.State, a domain.Attachment) (*domain.State, error)
	AttachVoiceNote(ctx context.Context, state *domain.State, a domain.Attachment, transcript string) (*domain.State, error)
	RemoveAttachment(ctx context.Context, state *domain.State, index int) (*domain.State, error)
	Classify(ctx context.Context, state *domain.State, text string) (*domain.State, error)
	Advise(ctx context.Context, state *domain.State, text string) (*domain.State, error)
	Submit(ctx context.Context, state *domain.State, channel domain.Channel) (*domain.State, error)
	Restart(ctx context.Context, state *domain.State) (*domain.State, error)
	Cancel(ctx context.Context, state *domain.State) (*domain.State, error)
}

// Server serves the widget API.
type Server struct {
	engine   Engine
	sessions *session.Manager
	streams  *StreamManager
	secret   []byte
	tokenTTL time.Duration
	origins  []string
	metrics  http.Handler
	version  string
	newID    func() string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of session tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithAllowedOrigins restricts CORS. Empty allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion is reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithIDGenerator replaces the uuid session id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock replaces time.Now for token issuing and checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the API. secret signs the session tokens and must not be empty.
func NewServer(engine Engine, sessions *session.Manager, secret string, opts ...Option) (*Server, error) {
	if secret == "" {
		return nil, errors.New("http: a token secret is required")
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: DefaultTokenTTL,
		version:  "dev",
		newID:    newSessionID,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s, nil
}

// Streams returns the SSE fan-out, e.g. to count subscribers.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", s.getSpec)
	r.Get("/catalog", s.getCatalog)
	r.Get("/whatsapp", s.getQuickWhatsApp)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.authorize)

		r.Get("/", s.getSession)
		r.Delete("/", s.deleteSession)
		r.Get("/events", s.subscribeEvents)

		r.Post("/navigate", s.navigate)
		r.Post("/fields", s.setFields)
		r.Post("/category", s.selectCategory)
		r.Post("/next", s.next)
		r.Post("/back", s.back)
		r.Post("/goto", s.gotoScreen)
		r.Post("/attachments", s.attach)
		r.Delete("/attachments/{index}", s.removeAttachment)
		r.Post("/classify", s.classify)
		r.Post("/advise", s.advise)
		r.Post("/submit", s.submit)
		r.Post("/restart", s.restart)
		r.Post("/cancel", s.cancel)
	})
	return r
}
