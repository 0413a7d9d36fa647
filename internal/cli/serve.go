package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/internal/config"
	httpadapter "github.com/aretw0/orca/pkg/adapters/http"
	"github.com/aretw0/orca/pkg/adapters/mcp"
	"github.com/aretw0/orca/pkg/intake"
	"github.com/aretw0/orca/pkg/observability"
	"github.com/aretw0/orca/pkg/ports"
	"github.com/aretw0/orca/pkg/session"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// ServeHTTP runs the widget API until ctx is cancelled.
func ServeHTTP(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.HTTP.JWTSecret == "" {
		return errors.New("serve requires a JWT secret (http.jwt_secret or ORCA_JWT_SECRET)")
	}
	stack, err := NewStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	metrics := observability.NewMetrics()
	hooks := metrics.Hooks(logger)
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = observability.MergeHooks(hooks, createDebugHooks(logger))
	}
	engine, err := NewEngine(ctx, cfg, stack, logger, orca.WithLifecycleHooks(hooks))
	if err != nil {
		return err
	}

	sessions := stack.Sessions(logger)
	server, err := httpadapter.NewServer(engine, sessions, cfg.HTTP.JWTSecret,
		httpadapter.WithTokenTTL(time.Duration(cfg.HTTP.TokenTTL)),
		httpadapter.WithAllowedOrigins(cfg.HTTP.AllowedOrigins),
		httpadapter.WithMetricsHandler(metrics.Handler()),
		httpadapter.WithVersion(orca.Version),
		httpadapter.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	go trackSessions(ctx, sessions, metrics, logger)

	logger.Info("starting orca server", "addr", cfg.HTTP.Addr, "store", cfg.Store.Backend)
	return listen(ctx, &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, logger)
}

// sessionPollInterval paces the active session gauge.
const sessionPollInterval = 15 * time.Second

// trackSessions publishes the number of stored sessions.
func trackSessions(ctx context.Context, sessions *session.Manager, metrics *observability.Metrics, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPollInterval)
	defer ticker.Stop()
	for {
		ids, err := sessions.List(ctx)
		if err != nil {
			logger.Debug("failed to count sessions", "err", err)
		} else {
			metrics.ActiveSessions.Set(float64(len(ids)))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ServeIntake runs the order collaborator until ctx is cancelled.
func ServeIntake(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var mailer ports.Mailer = intake.LogMailer{Logger: logger}
	if cfg.Intake.SendGridKey != "" {
		mailer = intake.NewSendGridMailer(cfg.Intake.SendGridKey, cfg.Intake.SendGridHost)
	} else {
		logger.Warn("no SendGrid key configured, mail is logged instead of sent")
	}

	window := time.Duration(cfg.Intake.RateWindow)
	var limiter ports.RateLimiter = intake.NewMemoryLimiter(cfg.Intake.RateLimit, window)
	if cfg.Intake.RedisLimiter {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		defer client.Close()
		limiter = intake.NewRedisLimiter(client, cfg.Store.RedisPrefix, cfg.Intake.RateLimit, window)
	}

	server := intake.New(mailer,
		intake.WithRateLimiter(limiter),
		intake.WithBusiness(cfg.Business),
		intake.WithAllowedOrigins(cfg.HTTP.AllowedOrigins...),
		intake.WithLogger(logger),
	)

	logger.Info("starting intake server", "addr", cfg.Intake.Addr, "sendgrid", cfg.Intake.SendGridKey != "")
	return listen(ctx, &http.Server{
		Addr:              cfg.Intake.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, logger)
}

// ServeMCP runs the MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, transport, addr string) error {
	stack, err := NewStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	engine, err := NewEngine(ctx, cfg, stack, logger)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(engine, stack.Sessions(logger), mcp.WithLogger(logger))

	switch strings.ToLower(transport) {
	case "stdio":
		logger.Info("starting orca MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, addr)
	}
	return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
}

func listen(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("start shutdown", "addr", srv.Addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("server stopped gracefully", "addr", srv.Addr)
		return nil
	}
}
