package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-remitlink/core"
	"github.com/zalando/go-keyring"
)

// KeyringBackend stores entries in the OS keychain (macOS Keychain, Windows
// Credential Manager, Secret Service). Values are kept as strings.
type KeyringBackend struct {
	service string
}

func NewKeyringBackend(service string) *KeyringBackend {
	trimmed := strings.TrimSpace(service)
	if trimmed == "" {
		trimmed = core.DefaultKeyringService
	}
	return &KeyringBackend{service: trimmed}
}

func (b *KeyringBackend) Service() string {
	return b.service
}

func (b *KeyringBackend) Put(_ context.Context, key string, value []byte) error {
	if err := keyring.Set(b.service, key, string(value)); err != nil {
		return fmt.Errorf("store: keyring set: %w", err)
	}
	return nil
}

func (b *KeyringBackend) Fetch(_ context.Context, key string) ([]byte, error) {
	value, err := keyring.Get(b.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: keyring get: %w", err)
	}
	return []byte(value), nil
}

func (b *KeyringBackend) Remove(_ context.Context, key string) error {
	if err := keyring.Delete(b.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("store: keyring delete: %w", err)
	}
	return nil
}
