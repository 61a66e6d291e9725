// Package store implements the secure credential store over pluggable
// backends. Backend failures never reach callers: they are logged and surface
// as absence.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-remitlink/adapters/gologger"
	"github.com/goliatone/go-remitlink/core"
)

const defaultOperationTimeout = 5 * time.Second

const loggerName = "remitlink.store"

var ErrNotFound = errors.New("store: entry not found")

// Backend is the durable side of a SecureStore. Fetch returns ErrNotFound for
// missing keys; Remove may return it too.
type Backend interface {
	Put(ctx context.Context, key string, value []byte) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

type Option func(*SecureStore)

func WithLogger(logger glog.Logger) Option {
	return func(s *SecureStore) {
		s.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(s *SecureStore) {
		s.loggerProvider = provider
	}
}

func WithOperationTimeout(timeout time.Duration) Option {
	return func(s *SecureStore) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// SecureStore serializes save/get/delete over one backend.
type SecureStore struct {
	mu             sync.Mutex
	backend        Backend
	timeout        time.Duration
	logger         glog.Logger
	loggerProvider glog.LoggerProvider
}

func New(backend Backend, opts ...Option) *SecureStore {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &SecureStore{
		backend: backend,
		timeout: defaultOperationTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.logger = gologger.Named(loggerName, s.loggerProvider, s.logger)
	return s
}

// Save replaces any existing entry for key.
func (s *SecureStore) Save(key string, value []byte) {
	if strings.TrimSpace(key) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.operationContext()
	defer cancel()
	if err := s.backend.Remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("secure store delete before save failed", "key", key, "error", err)
	}
	if err := s.backend.Put(ctx, key, append([]byte(nil), value...)); err != nil {
		s.logger.Warn("secure store save failed", "key", key, "error", err)
	}
}

func (s *SecureStore) Get(key string) ([]byte, bool) {
	if strings.TrimSpace(key) == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.operationContext()
	defer cancel()
	value, err := s.backend.Fetch(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("secure store read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Delete is a no-op for missing keys.
func (s *SecureStore) Delete(key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.operationContext()
	defer cancel()
	if err := s.backend.Remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("secure store delete failed", "key", key, "error", err)
	}
}

func (s *SecureStore) Backend() Backend {
	return s.backend
}

func (s *SecureStore) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

var _ core.SecureStore = (*SecureStore)(nil)
