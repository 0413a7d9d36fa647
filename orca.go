package orca

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/orca/internal/runtime"
	"github.com/aretw0/orca/pkg/adapters/remote"
	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/ports"
)

// Engine is the entry point of the library. It embeds the order flow state
// machine and owns the collaborators wired around it.
type Engine struct {
	*runtime.Engine

	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

type config struct {
	catalog       *catalog.Catalog
	classifier    ports.Classifier
	classifierURL string
	sender        ports.OrderSender
	orderURL      string
	httpClient    *http.Client
	opener        ports.LinkOpener
	business      *dispatch.Business
	contacts      ports.ContactStore
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	minQuantity   int
	now           func() time.Time
	orderIDs      func(time.Time) string
}

// Option configures the Engine.
type Option func(*config)

// WithCatalog serves an already built catalog instead of loading one.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cfg *config) {
		cfg.catalog = c
	}
}

// WithClassifier sets the free-text classification collaborator.
func WithClassifier(c ports.Classifier) Option {
	return func(cfg *config) {
		cfg.classifier = c
	}
}

// WithClassifierURL talks to a classification service over HTTP.
func WithClassifierURL(url string) Option {
	return func(cfg *config) {
		cfg.classifierURL = url
	}
}

// WithOrderSender sets the email collaborator.
func WithOrderSender(s ports.OrderSender) Option {
	return func(cfg *config) {
		cfg.sender = s
	}
}

// WithOrderURL posts orders to an intake server over HTTP.
func WithOrderURL(url string) Option {
	return func(cfg *config) {
		cfg.orderURL = url
	}
}

// WithHTTPClient is used by the URL based collaborators.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithLinkOpener opens the WhatsApp link after submission.
func WithLinkOpener(o ports.LinkOpener) Option {
	return func(cfg *config) {
		cfg.opener = o
	}
}

// WithBusiness overrides the company contact points.
func WithBusiness(b dispatch.Business) Option {
	return func(cfg *config) {
		cfg.business = &b
	}
}

// WithContactStore enables contact autofill.
func WithContactStore(s ports.ContactStore) Option {
	return func(cfg *config) {
		cfg.contacts = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(cfg *config) {
		cfg.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMinimumQuantity sets the minimum order size.
func WithMinimumQuantity(n int) Option {
	return func(cfg *config) {
		cfg.minQuantity = n
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}

// WithOrderIDGenerator replaces the ORC-<year>-<nnnn> generator.
func WithOrderIDGenerator(gen func(time.Time) string) Option {
	return func(cfg *config) {
		cfg.orderIDs = gen
	}
}

// New builds an Engine. catalogPath may name a YAML/JSON catalog file or a
// directory of category documents; empty means the built-in ORCA catalog.
func New(ctx context.Context, catalogPath string, opts ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cat := cfg.catalog
	if cat == nil {
		if catalogPath == "" {
			cat = catalog.Default()
		} else {
			loaded, err := catalog.Load(ctx, catalogPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load catalog: %w", err)
			}
			cat = loaded
		}
	}

	var clientOpts []remote.Option
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, remote.WithHTTPClient(cfg.httpClient))
	}
	clientOpts = append(clientOpts, remote.WithLogger(cfg.logger))

	classifier := cfg.classifier
	if classifier == nil && cfg.classifierURL != "" {
		classifier = remote.NewClassifierClient(cfg.classifierURL, clientOpts...)
	}
	sender := cfg.sender
	if sender == nil && cfg.orderURL != "" {
		sender = remote.NewOrderClient(cfg.orderURL, clientOpts...)
	}

	dispatchOpts := []dispatch.Option{dispatch.WithLogger(cfg.logger)}
	if cfg.opener != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithLinkOpener(cfg.opener))
	}
	if cfg.business != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithBusiness(*cfg.business))
	}
	dispatcher := dispatch.New(sender, dispatchOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(cfg.logger),
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithDispatcher(dispatcher),
		runtime.WithMinimumQuantity(cfg.minQuantity),
		runtime.WithClock(cfg.now),
		runtime.WithOrderIDGenerator(cfg.orderIDs),
	}
	if classifier != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClassifier(classifier))
	}
	if cfg.contacts != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithContactStore(cfg.contacts))
	}

	return &Engine{
		Engine:     runtime.NewEngine(cat, runtimeOpts...),
		dispatcher: dispatcher,
		logger:     cfg.logger,
	}, nil
}

// Business returns the contact points used for links and guidance.
func (e *Engine) Business() dispatch.Business {
	return e.dispatcher.Business()
}

// QuickWhatsAppLink returns a deep link that needs no draft.
func (e *Engine) QuickWhatsAppLink() string {
	return dispatch.WhatsAppLink(e.Business().WhatsAppNumber, dispatch.QuickWhatsAppMessage())
}
