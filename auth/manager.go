// Package auth owns the bearer credential: it authenticates against the
// identity endpoint, persists the access token and hands it to call-sites.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-remitlink/adapters/gologger"
	"github.com/goliatone/go-remitlink/codec"
	"github.com/goliatone/go-remitlink/core"
)

const (
	grantTypePassword = "password"
	contentTypeForm   = "application/x-www-form-urlencoded"
	loggerName        = "remitlink.auth"
)

type Option func(*Manager)

func WithLogger(logger glog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(m *Manager) {
		m.loggerProvider = provider
	}
}

func WithMetrics(recorder core.MetricsRecorder) Option {
	return func(m *Manager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// WithOnSessionChange registers fn to run after every successful
// authentication and every logout, e.g. to drop per-user response caches.
func WithOnSessionChange(fn func()) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onSessionChange = append(m.onSessionChange, fn)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager never refreshes tokens. Expiry is informational; an upstream 401
// is the signal to authenticate again.
type Manager struct {
	executor core.Executor
	store    core.SecureStore
	config   core.Config

	authMu sync.Mutex

	stateMu  sync.RWMutex
	last     core.Credential
	issuedAt time.Time
	hasLast  bool

	now             func() time.Time
	metrics         core.MetricsRecorder
	onSessionChange []func()
	logger          glog.Logger
	loggerProvider  glog.LoggerProvider
}

func NewManager(executor core.Executor, store core.SecureStore, cfg core.Config, opts ...Option) (*Manager, error) {
	if executor == nil {
		return nil, fmt.Errorf("auth: executor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("auth: secure store is required")
	}
	if strings.TrimSpace(cfg.StoreKey) == "" {
		cfg.StoreKey = core.DefaultStoreKey
	}
	manager := &Manager{
		executor: executor,
		store:    store,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
		metrics:  core.NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(manager)
	}
	manager.logger = gologger.Named(loggerName, manager.loggerProvider, manager.logger)
	return manager, nil
}

// Authenticate exchanges username and password for an access token and
// persists it under the configured store key. Nothing is persisted on
// failure. Concurrent calls run one at a time.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (string, error) {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	token, err := m.authenticate(ctx, username, password)
	m.metrics.IncCounter(ctx, core.MetricAuthTotal, 1, map[string]string{
		"realm":   m.config.Realm,
		"outcome": core.OutcomeTag(err),
	})
	return token, err
}

func (m *Manager) authenticate(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", grantTypePassword)
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)

	outcome := m.executor.Execute(ctx, core.Descriptor{
		Method:  http.MethodPost,
		Path:    m.config.TokenPath(),
		Headers: map[string]string{"Content-Type": contentTypeForm},
		RawBody: []byte(form.Encode()),
	})
	data, err := outcome.Unwrap()
	if err != nil {
		m.logger.Warn("remitlink authentication failed", "realm", m.config.Realm, "error", err)
		return "", err
	}

	var credential core.Credential
	if err := codec.Decode(data, &credential); err != nil {
		m.logger.Warn("remitlink identity response rejected", "realm", m.config.Realm, "error", err)
		return "", core.NewAuthenticationError("auth: invalid identity response", err)
	}
	if strings.TrimSpace(credential.AccessToken) == "" {
		return "", core.NewAuthenticationError("auth: identity response carried an empty access token", nil)
	}

	m.store.Save(m.config.StoreKey, []byte(credential.AccessToken))

	m.stateMu.Lock()
	m.last = credential
	m.issuedAt = m.now()
	m.hasLast = true
	m.stateMu.Unlock()
	m.sessionChanged()

	m.logger.Info("remitlink authenticated", "realm", m.config.Realm, "expires_in", credential.ExpiresIn)
	return credential.AccessToken, nil
}

func (m *Manager) AuthenticateAsync(ctx context.Context, username, password string) <-chan core.Result[string] {
	return core.Async(ctx, func(ctx context.Context) (string, error) {
		return m.Authenticate(ctx, username, password)
	})
}

// AccessToken is a pure store read.
func (m *Manager) AccessToken() (string, bool) {
	value, ok := m.store.Get(m.config.StoreKey)
	if !ok || len(value) == 0 {
		return "", false
	}
	return string(value), true
}

func (m *Manager) RequireAccessToken() (string, error) {
	token, ok := m.AccessToken()
	if !ok {
		return "", core.NewAuthenticationError("auth: no access token; authenticate first", nil)
	}
	return token, nil
}

// Logout removes the stored token. Safe to call repeatedly.
func (m *Manager) Logout() {
	m.store.Delete(m.config.StoreKey)
	m.stateMu.Lock()
	m.last = core.Credential{}
	m.issuedAt = time.Time{}
	m.hasLast = false
	m.stateMu.Unlock()
	m.sessionChanged()
}

func (m *Manager) sessionChanged() {
	for _, fn := range m.onSessionChange {
		fn()
	}
}

// LastCredential is the last identity response seen by this process.
func (m *Manager) LastCredential() (core.Credential, bool) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.last, m.hasLast
}

// ExpiresAt reports when the last credential expires, if known.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	if !m.hasLast {
		return time.Time{}, false
	}
	expiresAt := m.last.ExpiresAt(m.issuedAt)
	return expiresAt, !expiresAt.IsZero()
}

var _ core.TokenProvider = (*Manager)(nil)
