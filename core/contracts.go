package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// SecureStore persists opaque secrets by key. Failures surface as absence.
type SecureStore interface {
	Save(key string, value []byte)
	Get(key string) ([]byte, bool)
	Delete(key string)
}

type Executor interface {
	Execute(ctx context.Context, descriptor Descriptor) Outcome
	ExecuteAsync(ctx context.Context, descriptor Descriptor) <-chan Outcome
}

type TokenProvider interface {
	AccessToken() (string, bool)
	RequireAccessToken() (string, error)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
