package store

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-remitlink/core"
	"github.com/viant/afs"
)

const (
	fileSuffix = ".secret"
	fileMode   = 0o600
	dirMode    = 0o700
)

// FileBackend writes one sealed file per key under a base URL. Any afs
// scheme works; plain paths are local files.
type FileBackend struct {
	fs      afs.Service
	baseURL string
	secrets core.SecretProvider
}

func NewFileBackend(baseURL string, secrets core.SecretProvider) (*FileBackend, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("store: file backend base url is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("store: file backend requires a secret provider")
	}
	return &FileBackend{
		fs:      afs.New(),
		baseURL: trimmed,
		secrets: secrets,
	}, nil
}

func (b *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := b.secrets.Encrypt(ctx, value)
	if err != nil {
		return fmt.Errorf("store: seal entry: %w", err)
	}
	exists, err := b.fs.Exists(ctx, b.baseURL)
	if err != nil {
		return fmt.Errorf("store: check base directory: %w", err)
	}
	if !exists {
		if err := b.fs.Create(ctx, b.baseURL, dirMode, true); err != nil {
			return fmt.Errorf("store: create base directory: %w", err)
		}
	}
	if err := b.fs.Upload(ctx, b.entryURL(key), fileMode, bytes.NewReader(sealed)); err != nil {
		return fmt.Errorf("store: write entry: %w", err)
	}
	return nil
}

func (b *FileBackend) Fetch(ctx context.Context, key string) ([]byte, error) {
	location := b.entryURL(key)
	exists, err := b.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("store: check entry: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	sealed, err := b.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("store: read entry: %w", err)
	}
	value, err := b.secrets.Decrypt(ctx, sealed)
	if err != nil {
		return nil, fmt.Errorf("store: open entry: %w", err)
	}
	return value, nil
}

func (b *FileBackend) Remove(ctx context.Context, key string) error {
	location := b.entryURL(key)
	exists, err := b.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("store: check entry: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := b.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	return nil
}

func (b *FileBackend) entryURL(key string) string {
	return b.baseURL + "/" + url.PathEscape(key) + fileSuffix
}
