package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-remitlink/core"
	"github.com/gregjones/httpcache"
)

type countingDoer struct {
	calls atomic.Int32
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return nil, errors.New("unexpected network call")
}

type stubDoer struct {
	status int
	body   string
}

func (d stubDoer) Do(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: d.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExecute_SendsMethodHeadersQueryAndJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/amr/ras/api/v1_0/ras/quote" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("transaction_ref"); got != "T-1" {
			t.Errorf("expected query value, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json content type to win, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"sending_amount":"100.00"}` {
			t.Errorf("unexpected request body %s", body)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	payload := core.Object(core.Field("sendingAmount", core.String("100.00")))
	outcome := NewExecutor(server.URL).Execute(context.Background(), core.Descriptor{
		Method:  http.MethodPost,
		Path:    "/amr/ras/api/v1_0/ras/quote",
		Headers: map[string]string{"Authorization": "Bearer abc123", "Content-Type": "text/plain"},
		Query:   map[string]string{"transaction_ref": "T-1"},
		Body:    &payload,
	})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err())
	}
	if string(outcome.Data()) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", outcome.Data())
	}
}

func TestExecute_RawBodyWinsOverStructuredBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "username=u&password=p" {
			t.Errorf("expected raw body, got %s", body)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("expected caller content type, got %q", got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	invalid := core.Object(core.Field("amount", core.Number("not-a-number")))
	outcome := NewExecutor(server.URL).Execute(context.Background(), core.Descriptor{
		Method:  http.MethodPost,
		Path:    "/token",
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    &invalid,
		RawBody: []byte("username=u&password=p"),
	})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err())
	}
}

func TestExecute_StatusBoundaries(t *testing.T) {
	cases := []struct {
		status int
		ok     bool
	}{
		{http.StatusOK, true},
		{299, true},
		{199, false},
		{300, false},
	}
	for _, tc := range cases {
		executor := NewExecutor("https://api.remitlink.test", WithHTTPClient(stubDoer{status: tc.status, body: "payload"}))
		outcome := executor.Execute(context.Background(), core.Descriptor{Path: "/x"})
		if outcome.OK() != tc.ok {
			t.Fatalf("status %d: expected ok=%v, got %v", tc.status, tc.ok, outcome.Err())
		}
		if !tc.ok {
			status, _ := core.HTTPStatus(outcome.Err())
			if !core.IsKind(outcome.Err(), core.KindHTTP) || status != tc.status {
				t.Fatalf("status %d: expected http error, got %v", tc.status, outcome.Err())
			}
		}
	}
}

func TestExecute_UnauthorizedKeepsRawBody(t *testing.T) {
	server := statusServer(t, http.StatusUnauthorized, "<html>denied</html>")
	outcome := NewExecutor(server.URL).Execute(context.Background(), core.Descriptor{Path: "/caas/api/v2/customer"})
	status, ok := core.HTTPStatus(outcome.Err())
	if !ok || status != http.StatusUnauthorized {
		t.Fatalf("expected HttpError(401), got %v", outcome.Err())
	}
	body, _ := core.ResponseBody(outcome.Err())
	if string(body) != "<html>denied</html>" {
		t.Fatalf("expected raw body to be kept, got %q", body)
	}
}

func TestExecute_EmptySuccessIsNoData(t *testing.T) {
	server := statusServer(t, http.StatusOK, "")
	outcome := NewExecutor(server.URL).Execute(context.Background(), core.Descriptor{Path: "/x"})
	if !core.IsKind(outcome.Err(), core.KindNoData) {
		t.Fatalf("expected no data, got %v", outcome.Err())
	}
}

func TestExecute_InvalidAddressDoesNoIO(t *testing.T) {
	cases := map[string]core.Descriptor{
		"space in path":   {Path: "/bad path"},
		"control in path": {Path: "/bad\npath"},
	}
	doer := &countingDoer{}
	for name, descriptor := range cases {
		outcome := NewExecutor("https://api.remitlink.test", WithHTTPClient(doer)).Execute(context.Background(), descriptor)
		if !core.IsKind(outcome.Err(), core.KindInvalidAddress) {
			t.Fatalf("%s: expected invalid address, got %v", name, outcome.Err())
		}
	}
	for _, base := range []string{"", "api.remitlink.test", "ftp://api.remitlink.test", "https://"} {
		outcome := NewExecutor(base, WithHTTPClient(doer)).Execute(context.Background(), core.Descriptor{Path: "/x"})
		if !core.IsKind(outcome.Err(), core.KindInvalidAddress) {
			t.Fatalf("base %q: expected invalid address, got %v", base, outcome.Err())
		}
	}
	if doer.calls.Load() != 0 {
		t.Fatalf("expected no network calls, got %d", doer.calls.Load())
	}
}

func TestExecute_EncodingFailureBeforeIO(t *testing.T) {
	doer := &countingDoer{}
	payload := core.Object(core.Field("amount", core.Number("1.2.3")))
	outcome := NewExecutor("https://api.remitlink.test", WithHTTPClient(doer)).Execute(context.Background(), core.Descriptor{
		Method: http.MethodPost,
		Path:   "/quotes",
		Body:   &payload,
	})
	if !core.IsKind(outcome.Err(), core.KindEncoding) {
		t.Fatalf("expected encoding error, got %v", outcome.Err())
	}
	if doer.calls.Load() != 0 {
		t.Fatalf("expected no network calls")
	}
}

func TestExecute_TransportFailureWrapsCause(t *testing.T) {
	server := statusServer(t, http.StatusOK, "x")
	base := server.URL
	server.Close()

	outcome := NewExecutor(base).Execute(context.Background(), core.Descriptor{Path: "/x"})
	if !core.IsKind(outcome.Err(), core.KindTransport) {
		t.Fatalf("expected transport error, got %v", outcome.Err())
	}
}

func TestExecute_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	executor := NewExecutor(server.URL)
	executor.timeout = 20 * time.Millisecond
	outcome := executor.Execute(context.Background(), core.Descriptor{Path: "/slow"})
	if !core.IsKind(outcome.Err(), core.KindTransport) {
		t.Fatalf("expected transport error on timeout, got %v", outcome.Err())
	}
	if !errors.Is(outcome.Err(), context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", outcome.Err())
	}
}

func TestExecute_ResponseLimitIsTransportError(t *testing.T) {
	server := statusServer(t, http.StatusOK, "12345")
	outcome := NewExecutor(server.URL, WithMaxResponseBodyBytes(4)).Execute(context.Background(), core.Descriptor{Path: "/x"})
	if !core.IsKind(outcome.Err(), core.KindTransport) {
		t.Fatalf("expected transport error, got %v", outcome.Err())
	}
}

func TestExecuteAsync_DeliversOneOutcome(t *testing.T) {
	server := statusServer(t, http.StatusOK, "done")
	ch := NewExecutor(server.URL).ExecuteAsync(context.Background(), core.Descriptor{Path: "/x"})
	outcome, ok := <-ch
	if !ok || !outcome.OK() {
		t.Fatalf("expected success outcome, got %v", outcome.Err())
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed after one outcome")
	}
}

func TestExecute_ResponseCacheServesCacheableLookups(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte(`[{"country_code":"IN"}]`))
	}))
	defer server.Close()

	executor := NewExecutor(server.URL, WithResponseCache(httpcache.NewMemoryCache()))
	for range 2 {
		outcome := executor.Execute(context.Background(), core.Descriptor{Path: "/raas/masters/v1/countries"})
		if !outcome.OK() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected second lookup from cache, got %d upstream hits", hits.Load())
	}
}

func TestPurgeResponseCache_ForcesNextLookupUpstream(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte(`[{"country_code":"IN"}]`))
	}))
	defer server.Close()

	if purged := NewExecutor(server.URL).PurgeResponseCache(); purged != 0 {
		t.Fatalf("expected no-op purge without a cache, got %d", purged)
	}

	executor := NewExecutor(server.URL, WithResponseCache(httpcache.NewMemoryCache()))
	lookup := func() {
		t.Helper()
		outcome := executor.Execute(context.Background(), core.Descriptor{Path: "/raas/masters/v1/countries"})
		if !outcome.OK() {
			t.Fatalf("expected success, got %v", outcome.Err())
		}
	}

	lookup()
	lookup()
	if purged := executor.PurgeResponseCache(); purged != 1 {
		t.Fatalf("expected one purged entry, got %d", purged)
	}
	lookup()
	if hits.Load() != 2 {
		t.Fatalf("expected lookup after purge to reach upstream, got %d hits", hits.Load())
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	counters []map[string]string
	observed int
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, _ int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == core.MetricRequestTotal {
		m.counters = append(m.counters, tags)
	}
}

func (m *recordingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed++
}

func TestExecute_RecordsOutcomeMetrics(t *testing.T) {
	metrics := &recordingMetrics{}
	executor := NewExecutor("https://api.remitlink.test",
		WithHTTPClient(stubDoer{status: http.StatusNotFound, body: "missing"}),
		WithMetrics(metrics),
	)
	executor.Execute(context.Background(), core.Descriptor{Path: "/caas/api/v2/customer"})

	ok := NewExecutor("https://api.remitlink.test",
		WithHTTPClient(stubDoer{status: http.StatusOK, body: "{}"}),
		WithMetrics(metrics),
	)
	ok.Execute(context.Background(), core.Descriptor{Method: http.MethodPost, Path: "/quotes"})

	if len(metrics.counters) != 2 || metrics.observed != 2 {
		t.Fatalf("expected two recorded requests, got %d counters %d observations", len(metrics.counters), metrics.observed)
	}
	if metrics.counters[0]["outcome"] != string(core.KindHTTP) || metrics.counters[0]["method"] != http.MethodGet {
		t.Fatalf("unexpected failure tags %v", metrics.counters[0])
	}
	if metrics.counters[1]["outcome"] != "ok" || metrics.counters[1]["method"] != http.MethodPost {
		t.Fatalf("unexpected success tags %v", metrics.counters[1])
	}
}
