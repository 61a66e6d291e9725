// Package api is the uniform call-site used by the remitlink domain managers
// (customer, master data, transaction, quotes).
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-remitlink/codec"
	"github.com/goliatone/go-remitlink/core"
)

const (
	CustomerBasePath    = "/caas/api/v2/customer"
	MasterDataBasePath  = "/raas/masters/v1"
	TransactionBasePath = "/amr/ras/api/v1_0/ras"
	QuotesPath          = "/quotes"
)

const authorizationHeader = "Authorization"

type Option func(*Caller)

// WithDefaultHeaders adds headers to every call. Authorization is always
// set from the token provider and cannot be overridden here.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Caller) {
		for key, value := range headers {
			key = http.CanonicalHeaderKey(strings.TrimSpace(key))
			if key == "" || key == authorizationHeader {
				continue
			}
			c.defaultHeaders[key] = value
		}
	}
}

type Caller struct {
	executor       core.Executor
	tokens         core.TokenProvider
	defaultHeaders map[string]string
}

func NewCaller(executor core.Executor, tokens core.TokenProvider, opts ...Option) (*Caller, error) {
	if executor == nil {
		return nil, fmt.Errorf("api: executor is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("api: token provider is required")
	}
	caller := &Caller{
		executor:       executor,
		tokens:         tokens,
		defaultHeaders: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(caller)
	}
	return caller, nil
}

// Call sends body (nil for none) as JSON with a bearer token and decodes the
// response into out (nil to discard).
func (c *Caller) Call(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	data, err := c.CallRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return codec.Decode(data, out)
}

// CallRaw is Call without decoding.
func (c *Caller) CallRaw(ctx context.Context, method, path string, query map[string]string, body any) ([]byte, error) {
	token, err := c.tokens.RequireAccessToken()
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(c.defaultHeaders)+1)
	for key, value := range c.defaultHeaders {
		headers[key] = value
	}
	headers[authorizationHeader] = "Bearer " + token

	descriptor := core.Descriptor{
		Method:  method,
		Path:    path,
		Headers: headers,
		Query:   query,
	}
	if body != nil {
		payload, err := core.FromAny(body)
		if err != nil {
			return nil, err
		}
		descriptor.Body = &payload
	}
	return c.executor.Execute(ctx, descriptor).Unwrap()
}

// ServerMessage extracts the "message" field of a JSON error body carried by
// an HTTP error.
func ServerMessage(err error) (string, bool) {
	body, ok := core.ResponseBody(err)
	if !ok || len(body) == 0 {
		return "", false
	}
	value, parseErr := core.ParseValue(body)
	if parseErr != nil {
		return "", false
	}
	message, found := value.Lookup("message")
	if !found {
		return "", false
	}
	text, isString := message.AsString()
	if !isString || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
