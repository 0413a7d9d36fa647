package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Server handles order requests.
type Server struct {
	mailer   ports.Mailer
	limiter  ports.RateLimiter
	business dispatch.Business
	origins  []string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimiter replaces the in-memory limiter.
func WithRateLimiter(l ports.RateLimiter) Option {
	return func(s *Server) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithBusiness sets the sender address and the contact points shown in emails.
func WithBusiness(b dispatch.Business) Option {
	return func(s *Server) {
		s.business = b
	}
}

// WithAllowedOrigins restricts CORS. All origins are allowed by default.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server. A nil mailer makes every order fail with a
// configuration error.
func New(mailer ports.Mailer, opts ...Option) *Server {
	s := &Server{
		mailer:   mailer,
		limiter:  NewMemoryLimiter(DefaultRateLimit, DefaultRateWindow),
		business: dispatch.DefaultBusiness(),
		origins:  []string{"*"},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, domain.OrderResponse{Error: "Method Not Allowed"})
	})
	r.Post("/send-order", s.handleSendOrder)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (s *Server) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ip := clientIP(r)
	ok, err := s.limiter.Allow(ctx, ip)
	if err != nil {
		// Counting is best effort; an unreachable store must not block orders.
		s.logger.Warn("rate limiter failed", "ip", ip, "err", err)
		ok = true
	}
	if !ok {
		s.logger.Warn("rate limit exceeded", "ip", ip)
		writeJSON(w, http.StatusTooManyRequests, domain.OrderResponse{Error: "Too many requests. Please try again later."})
		return
	}

	if s.mailer == nil {
		s.logger.Error("mailer not configured")
		writeJSON(w, http.StatusInternalServerError, domain.OrderResponse{Error: "Server configuration error"})
		return
	}

	var req domain.OrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, domain.OrderResponse{Error: "Payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, domain.OrderResponse{Error: "Invalid JSON payload"})
		return
	}

	if errs := Validate(req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, domain.OrderResponse{Error: "Validation failed", Details: errs})
		return
	}
	if len(req.Attachments) > MaxAttachments {
		writeJSON(w, http.StatusBadRequest, domain.OrderResponse{
			Error: fmt.Sprintf("Too many attachments. Max %d.", MaxAttachments),
		})
		return
	}
	if attachmentBytes(req.Attachments) > MaxAttachmentSize {
		writeJSON(w, http.StatusBadRequest, domain.OrderResponse{Error: "Attachments too large. Total limit is 4.5MB."})
		return
	}

	sales, err := SalesMail(req, s.business)
	if err != nil {
		s.fail(w, req, err)
		return
	}
	if err := s.mailer.Send(ctx, sales); err != nil {
		s.fail(w, req, err)
		return
	}
	s.logger.Info("order sent to sales team", "order", req.OrderNumber, "attachments", len(req.Attachments))

	// The order has reached sales; a failed confirmation is only logged.
	confirm, err := CustomerMail(req, s.business)
	if err == nil {
		err = s.mailer.Send(ctx, confirm)
	}
	if err != nil {
		s.logger.Warn("confirmation email failed", "order", req.OrderNumber, "err", err)
	} else {
		s.logger.Info("confirmation email sent", "order", req.OrderNumber)
	}

	writeJSON(w, http.StatusOK, domain.OrderResponse{
		Success:     true,
		Message:     "Emails sent successfully",
		OrderNumber: req.OrderNumber,
	})
}

func (s *Server) fail(w http.ResponseWriter, req domain.OrderRequest, err error) {
	s.logger.Error("failed to send order", "order", req.OrderNumber, "err", err)
	writeJSON(w, http.StatusInternalServerError, domain.OrderResponse{Error: err.Error()})
}

// clientIP prefers the proxy headers, then the peer address.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("Client-Ip")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
