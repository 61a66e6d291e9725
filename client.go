// Package remitlink wires the request, credential and storage layers of the
// remitlink SDK into a single Client. Nothing is shared between clients.
package remitlink

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-remitlink/adapters/gologger"
	"github.com/goliatone/go-remitlink/api"
	"github.com/goliatone/go-remitlink/auth"
	"github.com/goliatone/go-remitlink/core"
	"github.com/goliatone/go-remitlink/store"
	"github.com/goliatone/go-remitlink/transport"
	"github.com/gregjones/httpcache"
)

const loggerName = "remitlink"

type Option func(*clientOptions)

type clientOptions struct {
	logger         glog.Logger
	loggerProvider glog.LoggerProvider
	backend        store.Backend
	httpClient     transport.HTTPDoer
	responseCache  httpcache.Cache
	defaultHeaders map[string]string
	metrics        core.MetricsRecorder
	clock          func() time.Time
}

func WithLogger(logger glog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(o *clientOptions) {
		o.loggerProvider = provider
	}
}

// WithBackend replaces the default OS keyring backend.
func WithBackend(backend store.Backend) Option {
	return func(o *clientOptions) {
		o.backend = backend
	}
}

func WithHTTPClient(client transport.HTTPDoer) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithResponseCache caches cacheable GET responses. Entries are dropped on
// every login and logout since the cache is keyed by URL, not by token.
func WithResponseCache(cache httpcache.Cache) Option {
	return func(o *clientOptions) {
		o.responseCache = cache
	}
}

func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *clientOptions) {
		o.defaultHeaders = headers
	}
}

func WithMetrics(recorder core.MetricsRecorder) Option {
	return func(o *clientOptions) {
		o.metrics = recorder
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		o.clock = now
	}
}

type Client struct {
	config   core.Config
	executor *transport.Executor
	store    *store.SecureStore
	auth     *auth.Manager
	caller   *api.Caller
	logger   glog.Logger
}

// New builds a Client from cfg. Connection values are not validated; each
// unset or placeholder field is logged as a warning.
func New(cfg core.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := clientOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	logger := gologger.Named(loggerName, options.loggerProvider, options.logger)
	for _, field := range cfg.Misconfigured() {
		logger.Warn("remitlink config value is unset or a placeholder", "field", field)
	}

	transportOpts := []transport.Option{
		transport.WithLogger(options.logger),
		transport.WithLoggerProvider(options.loggerProvider),
		transport.WithMetrics(options.metrics),
	}
	if options.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(options.httpClient))
	}
	if options.responseCache != nil {
		transportOpts = append(transportOpts, transport.WithResponseCache(options.responseCache))
	}
	executor := transport.NewExecutor(cfg.BaseURL, transportOpts...)

	backend := options.backend
	if backend == nil {
		backend = store.NewKeyringBackend(cfg.KeyringService)
	}
	secureStore := store.New(backend,
		store.WithLogger(options.logger),
		store.WithLoggerProvider(options.loggerProvider),
	)

	authOpts := []auth.Option{
		auth.WithLogger(options.logger),
		auth.WithLoggerProvider(options.loggerProvider),
		auth.WithMetrics(options.metrics),
		auth.WithOnSessionChange(func() { executor.PurgeResponseCache() }),
	}
	if options.clock != nil {
		authOpts = append(authOpts, auth.WithClock(options.clock))
	}
	manager, err := auth.NewManager(executor, secureStore, cfg, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("remitlink: credential manager: %w", err)
	}

	caller, err := api.NewCaller(executor, manager, api.WithDefaultHeaders(options.defaultHeaders))
	if err != nil {
		return nil, fmt.Errorf("remitlink: api caller: %w", err)
	}

	return &Client{
		config:   cfg,
		executor: executor,
		store:    secureStore,
		auth:     manager,
		caller:   caller,
		logger:   logger,
	}, nil
}

// NewFromEnv loads REMITLINK_* variables over the defaults and builds a
// Client from the result.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := core.LoadConfig(ctx, core.NewCfgxConfigProvider(core.EnvConfigLoader{}), nil, core.Config{})
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func (c *Client) Config() core.Config { return c.config }

func (c *Client) Executor() *transport.Executor { return c.executor }

func (c *Client) Store() *store.SecureStore { return c.store }

func (c *Client) Auth() *auth.Manager { return c.auth }

func (c *Client) API() *api.Caller { return c.caller }

func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	return c.auth.Authenticate(ctx, username, password)
}

func (c *Client) AccessToken() (string, bool) {
	return c.auth.AccessToken()
}

// Logout removes the stored token and purges the response cache.
func (c *Client) Logout() {
	c.auth.Logout()
}

func (c *Client) Execute(ctx context.Context, descriptor core.Descriptor) core.Outcome {
	return c.executor.Execute(ctx, descriptor)
}

func (c *Client) Call(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	return c.caller.Call(ctx, method, path, query, body, out)
}
