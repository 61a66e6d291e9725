package transport

import (
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-remitlink/core"
	"github.com/gregjones/httpcache"
)

type Option func(*Executor)

func WithLogger(logger glog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(e *Executor) {
		e.loggerProvider = provider
	}
}

// WithHTTPClient replaces the pooled client. The 30s request bound still
// applies through the request context.
func WithHTTPClient(client HTTPDoer) Option {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithResponseCache layers an RFC 7234 cache on the client transport. Only
// responses that upstream marks cacheable are reused. Entries are keyed by
// URL, not by bearer token: use it for user-independent lookups such as
// master data, and call PurgeResponseCache when the session changes.
func WithResponseCache(cache httpcache.Cache) Option {
	return func(e *Executor) {
		if cache == nil {
			e.cache = nil
			return
		}
		e.cache = newTrackedCache(cache)
	}
}

func WithMetrics(recorder core.MetricsRecorder) Option {
	return func(e *Executor) {
		if recorder != nil {
			e.metrics = recorder
		}
	}
}

func WithMaxResponseBodyBytes(limit int64) Option {
	return func(e *Executor) {
		if limit > 0 {
			e.MaxResponseBodyBytes = limit
		}
	}
}

func newPooledClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout:   defaultRequestTimeout,
		Transport: transport,
	}
}

func withCacheTransport(client HTTPDoer, cache *trackedCache) HTTPDoer {
	if cache == nil {
		return client
	}
	httpClient, ok := client.(*http.Client)
	if !ok {
		return client
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cached := *httpClient
	cached.Transport = &httpcache.Transport{
		Transport:           base,
		Cache:               cache,
		MarkCachedResponses: true,
	}
	return &cached
}
