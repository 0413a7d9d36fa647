package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/internal/config"
	"github.com/aretw0/orca/pkg/adapters/file"
	"github.com/aretw0/orca/pkg/adapters/memory"
	"github.com/aretw0/orca/pkg/adapters/redis"
	"github.com/aretw0/orca/pkg/persistence/middleware"
	"github.com/aretw0/orca/pkg/ports"
	"github.com/aretw0/orca/pkg/session"
)

// Stack is the persistence selected by the configuration.
type Stack struct {
	// Store is the session store with masking and encryption applied.
	Store    ports.StateStore
	Contacts ports.ContactStore
	// Locker is set for redis only; local stores rely on in-process locks.
	Locker ports.DistributedLocker
	// Redis is the shared client when the backend is redis.
	Redis *backend.Client

	closers []func() error
}

// NewStack builds the stores named by cfg.Store.
func NewStack(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{}
	var base ports.StateStore

	switch cfg.Store.Backend {
	case config.StoreMemory:
		base = memory.NewStore()
		s.Contacts = memory.NewContactStore()
	case config.StoreFile:
		base = file.New(cfg.Store.Path)
		s.Contacts = file.NewContactStore(filepath.Join(filepath.Dir(cfg.Store.Path), "contacts"))
	case config.StoreRedis:
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB,
			redis.WithPrefix(cfg.Store.RedisPrefix),
			redis.WithTTL(time.Duration(cfg.Store.SessionTTL)),
		)
		base = store
		s.Redis = store.Client()
		s.Contacts = redis.NewContactStore(s.Redis, cfg.Store.RedisPrefix, logger)
		s.Locker = redis.NewLocker(s.Redis, cfg.Store.RedisPrefix)
		s.closers = append(s.closers, store.Close)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Store = middleware.Chain(base, mws...)
	logger.Debug("store ready", "backend", cfg.Store.Backend, "middleware", len(mws))
	return s, nil
}

// storeMiddleware masks before it seals, so encrypted envelopes never hold
// the masked fields.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if cfg.MaskPII {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.DeriveKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		encCfg := middleware.EncryptionConfig{ActiveKey: active}
		for i, secret := range cfg.FallbackKeys {
			key, err := middleware.DeriveKey(secret)
			if err != nil {
				return nil, fmt.Errorf("fallback key %d: %w", i, err)
			}
			encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
		}
		enc, err := middleware.NewEncryptionMiddleware(encCfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// Sessions returns a manager over the store, distributed when redis is used.
func (s *Stack) Sessions(logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if s.Locker != nil {
		opts = append(opts, session.WithLocker(s.Locker))
	}
	return session.NewManager(s.Store, opts...)
}

// Close releases connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewEngine creates the order engine from cfg. extra options win.
func NewEngine(ctx context.Context, cfg *config.Config, stack *Stack, logger *slog.Logger, extra ...orca.Option) (*orca.Engine, error) {
	opts := []orca.Option{
		orca.WithLogger(logger),
		orca.WithMinimumQuantity(cfg.MinimumQuantity),
		orca.WithBusiness(cfg.Business),
		orca.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Collaborators.Timeout)}),
	}
	if stack != nil && stack.Contacts != nil {
		opts = append(opts, orca.WithContactStore(stack.Contacts))
	}
	if cfg.Collaborators.ClassifierURL != "" {
		opts = append(opts, orca.WithClassifierURL(cfg.Collaborators.ClassifierURL))
	}
	if cfg.Collaborators.OrderURL != "" {
		opts = append(opts, orca.WithOrderURL(cfg.Collaborators.OrderURL))
	}
	opts = append(opts, extra...)

	engine, err := orca.New(ctx, cfg.Catalog, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
