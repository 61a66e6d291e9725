package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-remitlink/security"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/zalando/go-keyring"
)

type failingBackend struct {
	err error
}

func (b failingBackend) Put(context.Context, string, []byte) error     { return b.err }
func (b failingBackend) Fetch(context.Context, string) ([]byte, error) { return nil, b.err }
func (b failingBackend) Remove(context.Context, string) error          { return b.err }

type countingBackend struct {
	*MemoryBackend
	mu      sync.Mutex
	fetches int
}

func (b *countingBackend) Fetch(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	b.fetches++
	b.mu.Unlock()
	return b.MemoryBackend.Fetch(ctx, key)
}

func assertStoreContract(t *testing.T, s *SecureStore) {
	t.Helper()
	if _, ok := s.Get("access_token"); ok {
		t.Fatalf("expected empty store")
	}
	s.Save("access_token", []byte("first"))
	s.Save("access_token", []byte("abc123"))
	value, ok := s.Get("access_token")
	if !ok || string(value) != "abc123" {
		t.Fatalf("expected latest value, got %q %v", value, ok)
	}
	s.Delete("access_token")
	s.Delete("access_token")
	if _, ok := s.Get("access_token"); ok {
		t.Fatalf("expected entry to be deleted")
	}
}

func TestSecureStore_MemoryBackendContract(t *testing.T) {
	assertStoreContract(t, New(NewMemoryBackend()))
}

func TestSecureStore_SwallowsBackendErrors(t *testing.T) {
	s := New(failingBackend{err: errors.New("keychain locked")})
	s.Save("access_token", []byte("abc123"))
	if _, ok := s.Get("access_token"); ok {
		t.Fatalf("expected backend failure to surface as absence")
	}
	s.Delete("access_token")
}

func TestSecureStore_IgnoresEmptyKeys(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend)
	s.Save(" ", []byte("x"))
	if backend.Len() != 0 {
		t.Fatalf("expected empty key save to be ignored")
	}
}

func TestSecureStore_ConcurrentSavesLeaveOneWholeValue(t *testing.T) {
	s := New(NewMemoryBackend())
	values := []string{"alpha", "bravo", "charlie", "delta"}
	var wg sync.WaitGroup
	for _, value := range values {
		wg.Add(1)
		go func(value string) {
			defer wg.Done()
			s.Save("access_token", []byte(value))
		}(value)
	}
	wg.Wait()
	got, ok := s.Get("access_token")
	if !ok {
		t.Fatalf("expected a value after concurrent saves")
	}
	found := false
	for _, value := range values {
		if string(got) == value {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected one of the written values, got %q", got)
	}
}

func TestFileBackend_SurvivesNewStoreInstance(t *testing.T) {
	dir := t.TempDir() + "/secrets"
	secrets, err := security.NewAppKeySecretProviderFromString("file-backend-test-key")
	if err != nil {
		t.Fatalf("new secret provider: %v", err)
	}
	backend, err := NewFileBackend(dir, secrets)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	assertStoreContract(t, New(backend))

	New(backend).Save("access_token", []byte("persisted"))

	reopened, err := NewFileBackend(dir, secrets)
	if err != nil {
		t.Fatalf("reopen file backend: %v", err)
	}
	value, ok := New(reopened).Get("access_token")
	if !ok || string(value) != "persisted" {
		t.Fatalf("expected value to survive restart, got %q %v", value, ok)
	}

	raw, err := reopened.fs.DownloadWithURL(context.Background(), reopened.entryURL("access_token"))
	if err != nil {
		t.Fatalf("read raw file: %v", err)
	}
	if string(raw) == "persisted" {
		t.Fatalf("expected value to be sealed at rest")
	}
}

func TestFileBackend_RequiresSecretProvider(t *testing.T) {
	if _, err := NewFileBackend(t.TempDir(), nil); err == nil {
		t.Fatalf("expected missing secret provider error")
	}
	if _, err := NewFileBackend("", nil); err == nil {
		t.Fatalf("expected missing base url error")
	}
}

func TestKeyringBackend_UsesServiceName(t *testing.T) {
	keyring.MockInit()
	backend := NewKeyringBackend("remitlink-test")
	assertStoreContract(t, New(backend))

	New(backend).Save("access_token", []byte("abc123"))
	value, err := keyring.Get("remitlink-test", "access_token")
	if err != nil || value != "abc123" {
		t.Fatalf("expected keyring entry under service, got %q %v", value, err)
	}
	if NewKeyringBackend("").Service() != "remitlink" {
		t.Fatalf("expected default keyring service")
	}
}

func TestCachedBackend_ReadThroughAndInvalidate(t *testing.T) {
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	cacheService, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	base := &countingBackend{MemoryBackend: NewMemoryBackend()}
	cached, err := NewCachedBackend(base, cacheService)
	if err != nil {
		t.Fatalf("new cached backend: %v", err)
	}
	s := New(cached)

	s.Save("access_token", []byte("abc123"))
	for range 3 {
		if value, ok := s.Get("access_token"); !ok || string(value) != "abc123" {
			t.Fatalf("expected cached value, got %q %v", value, ok)
		}
	}
	if base.fetches != 1 {
		t.Fatalf("expected one base fetch, got %d", base.fetches)
	}

	s.Save("access_token", []byte("def456"))
	if value, _ := s.Get("access_token"); string(value) != "def456" {
		t.Fatalf("expected invalidated value, got %q", value)
	}
	s.Delete("access_token")
	if _, ok := s.Get("access_token"); ok {
		t.Fatalf("expected removal to invalidate cache")
	}
}

func TestCacheKey_EscapesKey(t *testing.T) {
	if got := CacheKey("a/b"); got != "remitlink::secure_entry::v1::a%2Fb" {
		t.Fatalf("unexpected cache key %q", got)
	}
}
