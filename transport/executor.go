package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-remitlink/adapters/gologger"
	"github.com/goliatone/go-remitlink/codec"
	"github.com/goliatone/go-remitlink/core"
	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
)

const defaultRequestTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

const (
	contentTypeJSON = "application/json"
	loggerName      = "remitlink.transport"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor performs single-attempt HTTP requests against one base origin.
type Executor struct {
	BaseURL              string
	MaxResponseBodyBytes int64

	client         HTTPDoer
	cache          *trackedCache
	timeout        time.Duration
	metrics        core.MetricsRecorder
	logger         glog.Logger
	loggerProvider glog.LoggerProvider
}

func NewExecutor(baseURL string, opts ...Option) *Executor {
	executor := &Executor{
		BaseURL:              baseURL,
		MaxResponseBodyBytes: defaultResponseBodyLimit,
		timeout:              defaultRequestTimeout,
		metrics:              core.NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(executor)
	}
	if executor.client == nil {
		executor.client = newPooledClient()
	}
	executor.client = withCacheTransport(executor.client, executor.cache)
	executor.logger = gologger.Named(loggerName, executor.loggerProvider, executor.logger)
	return executor
}

// PurgeResponseCache drops every response this executor cached and returns
// how many entries were removed. It is a no-op without WithResponseCache.
func (e *Executor) PurgeResponseCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.purge()
}

func (e *Executor) ExecuteAsync(ctx context.Context, descriptor core.Descriptor) <-chan core.Outcome {
	out := make(chan core.Outcome, 1)
	go func() {
		defer close(out)
		out <- e.Execute(ctx, descriptor)
	}()
	return out
}

func (e *Executor) Execute(ctx context.Context, descriptor core.Descriptor) core.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID := uuid.NewString()
	method := descriptor.NormalizedMethod()
	logger := e.logger.WithContext(ctx)

	startedAt := time.Now()
	outcome := e.execute(ctx, method, descriptor, requestID)
	tags := map[string]string{"method": method, "outcome": core.OutcomeTag(outcome.Err())}
	e.metrics.IncCounter(ctx, core.MetricRequestTotal, 1, tags)
	e.metrics.ObserveHistogram(ctx, core.MetricRequestDurationMS, float64(time.Since(startedAt).Milliseconds()), map[string]string{"method": method})
	if !outcome.OK() {
		kind, _ := outcome.Kind()
		logger.Warn("remitlink request failed",
			"request_id", requestID,
			"method", method,
			"path", descriptor.Path,
			"kind", kind.String(),
			"error", outcome.Err(),
		)
	}
	return outcome
}

func (e *Executor) execute(ctx context.Context, method string, descriptor core.Descriptor, requestID string) core.Outcome {
	address, err := e.resolveAddress(descriptor)
	if err != nil {
		return core.Failure(err)
	}

	body, jsonPayload, err := requestBody(descriptor)
	if err != nil {
		return core.Failure(err)
	}

	requestCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, address, bytes.NewReader(body))
	if err != nil {
		return core.Failure(core.NewInvalidAddressError("transport: create http request", err))
	}
	for key, value := range descriptor.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(key, value)
	}
	if jsonPayload {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}

	startedAt := time.Now()
	httpRes, err := e.client.Do(httpReq)
	if err != nil {
		return core.Failure(core.NewTransportError("transport: execute http request", err))
	}
	defer httpRes.Body.Close()

	limit := e.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	data, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return core.Failure(core.NewTransportError("transport: read response body", err))
	}
	if int64(len(data)) > limit {
		return core.Failure(core.NewTransportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit), nil,
		))
	}

	fields := []any{
		"request_id", requestID,
		"method", method,
		"path", descriptor.Path,
		"headers", core.RedactStringMap(descriptor.Headers),
		"query", core.RedactStringMap(descriptor.Query),
		"status", httpRes.StatusCode,
		"duration_ms", time.Since(startedAt).Milliseconds(),
		"cached", httpRes.Header.Get(httpcache.XFromCache) == "1",
	}
	if jsonPayload {
		fields = append(fields, "body", core.RedactValue(*descriptor.Body))
	}
	e.logger.WithContext(ctx).Debug("remitlink request", fields...)
	return classify(httpRes.StatusCode, data)
}

func classify(status int, data []byte) core.Outcome {
	if status < http.StatusOK || status > 299 {
		return core.Failure(core.NewHTTPError(status, data))
	}
	if len(data) == 0 {
		return core.Failure(core.NewNoDataError("transport: response body is empty"))
	}
	return core.Success(data)
}

// resolveAddress joins base and path as strings and requires an absolute
// http(s) URL with a host.
func (e *Executor) resolveAddress(descriptor core.Descriptor) (string, error) {
	joined := e.BaseURL + descriptor.Path
	if strings.TrimSpace(joined) == "" {
		return "", core.NewInvalidAddressError("transport: request address is empty", nil)
	}
	if strings.IndexFunc(joined, invalidAddressRune) >= 0 {
		return "", core.NewInvalidAddressError(fmt.Sprintf("transport: invalid characters in address %q", joined), nil)
	}
	parsed, err := url.Parse(joined)
	if err != nil {
		return "", core.NewInvalidAddressError("transport: invalid request address", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", core.NewInvalidAddressError(fmt.Sprintf("transport: unsupported scheme %q", parsed.Scheme), nil)
	}
	if parsed.Host == "" {
		return "", core.NewInvalidAddressError("transport: request address has no host", nil)
	}
	if len(descriptor.Query) > 0 {
		query := parsed.Query()
		for key, value := range descriptor.Query {
			if strings.TrimSpace(key) == "" {
				continue
			}
			query.Set(key, value)
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

func invalidAddressRune(r rune) bool {
	return r <= ' ' || r == 0x7f
}

// requestBody picks the payload. Raw bytes win over a structured body, which
// is then never serialized.
func requestBody(descriptor core.Descriptor) ([]byte, bool, error) {
	if descriptor.RawBody != nil {
		return descriptor.RawBody, false, nil
	}
	if descriptor.Body == nil {
		return nil, false, nil
	}
	encoded, err := codec.Encode(*descriptor.Body)
	if err != nil {
		return nil, false, err
	}
	return encoded, true, nil
}

var _ core.Executor = (*Executor)(nil)
