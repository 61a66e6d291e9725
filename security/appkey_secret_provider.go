package security

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-remitlink/core"
)

type Option func(*AppKeySecretProvider)

// AppKeySecretProvider seals store entries with AES-GCM under an application
// key. Retired keys can be registered for decryption only.
type AppKeySecretProvider struct {
	active  appKey
	retired map[string]appKey
	window  KeyRotationWindow
	now     func() time.Time
}

type appKey struct {
	key     []byte
	keyID   string
	version int
}

func WithKeyID(id string) Option {
	return func(provider *AppKeySecretProvider) {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			provider.active.keyID = trimmed
		}
	}
}

func WithVersion(version int) Option {
	return func(provider *AppKeySecretProvider) {
		if version > 0 {
			provider.active.version = version
		}
	}
}

// WithRetiredKey registers a previous key that may still open entries.
func WithRetiredKey(keyMaterial []byte, keyID string, version int) Option {
	return func(provider *AppKeySecretProvider) {
		key := bytes.TrimSpace(keyMaterial)
		trimmedID := strings.TrimSpace(keyID)
		if len(key) == 0 || trimmedID == "" || version <= 0 {
			return
		}
		provider.retired[retiredKeyRef(trimmedID, version)] = appKey{
			key:     normalizeKey(key),
			keyID:   trimmedID,
			version: version,
		}
	}
}

func WithRotationWindow(window KeyRotationWindow) Option {
	return func(provider *AppKeySecretProvider) {
		provider.window = window
	}
}

func WithClock(now func() time.Time) Option {
	return func(provider *AppKeySecretProvider) {
		if now != nil {
			provider.now = now
		}
	}
}

func NewAppKeySecretProvider(keyMaterial []byte, opts ...Option) (*AppKeySecretProvider, error) {
	key := bytes.TrimSpace(keyMaterial)
	if len(key) == 0 {
		return nil, fmt.Errorf("security: key material is required")
	}
	provider := &AppKeySecretProvider{
		active: appKey{
			key:     normalizeKey(key),
			keyID:   "app-key",
			version: 1,
		},
		retired: map[string]appKey{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(provider)
	}
	return provider, nil
}

func NewAppKeySecretProviderFromString(key string, opts ...Option) (*AppKeySecretProvider, error) {
	return NewAppKeySecretProvider([]byte(key), opts...)
}

func (p *AppKeySecretProvider) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	if !p.window.Allows(p.now()) {
		return nil, fmt.Errorf("security: key %s v%d is outside its rotation window", p.active.keyID, p.active.version)
	}
	gcm, err := newGCM(p.active.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("security: nonce generation failed: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return encodeEnvelope(envelope{
		KeyID:      p.active.keyID,
		Version:    p.active.version,
		Algorithm:  envelopeAlgorithm,
		Nonce:      encodePayload(nonce),
		Ciphertext: encodePayload(sealed),
	})
}

func (p *AppKeySecretProvider) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	parsed, err := decodeEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}
	key, err := p.keyFor(parsed)
	if err != nil {
		return nil, err
	}
	nonce, err := decodePayload("nonce", parsed.Nonce)
	if err != nil {
		return nil, err
	}
	sealed, err := decodePayload("ciphertext", parsed.Ciphertext)
	if err != nil {
		return nil, err
	}
	gcm, err := newGCM(key.key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("security: decrypt payload: %w", err)
	}
	return plaintext, nil
}

func (p *AppKeySecretProvider) keyFor(env envelope) (appKey, error) {
	if (env.KeyID == "" || env.KeyID == p.active.keyID) && (env.Version <= 0 || env.Version == p.active.version) {
		return p.active, nil
	}
	if key, ok := p.retired[retiredKeyRef(env.KeyID, env.Version)]; ok {
		return key, nil
	}
	return appKey{}, fmt.Errorf("security: no key for %q v%d", env.KeyID, env.Version)
}

func (p *AppKeySecretProvider) KeyID() string {
	if p == nil {
		return ""
	}
	return p.active.keyID
}

func (p *AppKeySecretProvider) Version() int {
	if p == nil {
		return 0
	}
	return p.active.version
}

// NeedsReseal reports whether ciphertext was sealed by a key other than the
// active one.
func (p *AppKeySecretProvider) NeedsReseal(ciphertext []byte) bool {
	meta, err := ParseEnvelopeMetadata(ciphertext)
	if err != nil {
		return false
	}
	return meta.KeyID != p.KeyID() || meta.Version != p.Version()
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("security: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("security: create gcm: %w", err)
	}
	return gcm, nil
}

func retiredKeyRef(keyID string, version int) string {
	return fmt.Sprintf("%s#%d", keyID, version)
}

func normalizeKey(value []byte) []byte {
	if len(value) == 16 || len(value) == 24 || len(value) == 32 {
		key := make([]byte, len(value))
		copy(key, value)
		return key
	}
	sum := sha256.Sum256(value)
	key := make([]byte, len(sum))
	copy(key, sum[:])
	return key
}

var _ core.SecretProvider = (*AppKeySecretProvider)(nil)
