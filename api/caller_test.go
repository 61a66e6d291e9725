package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-remitlink/core"
	"github.com/goliatone/go-remitlink/transport"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AccessToken() (string, bool) {
	return s.token, s.token != ""
}

func (s staticTokens) RequireAccessToken() (string, error) {
	if s.token == "" {
		return "", core.NewAuthenticationError("no token", nil)
	}
	return s.token, nil
}

type createTransactionRequest struct {
	SendingAmount    string `json:"sendingAmount"`
	ReceivingCountry string `json:"receivingCountry"`
}

type createTransactionResponse struct {
	TransactionRefNumber string `json:"transactionRefNumber"`
}

func TestCall_AttachesBearerEncodesAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != TransactionBasePath+"/createtransaction" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			t.Errorf("expected bearer token, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"sending_amount":"100.00","receiving_country":"IN"}` {
			t.Errorf("unexpected body %s", body)
		}
		_, _ = w.Write([]byte(`{"transaction_ref_number":"T-100"}`))
	}))
	defer server.Close()

	caller, err := NewCaller(transport.NewExecutor(server.URL), staticTokens{token: "abc123"})
	if err != nil {
		t.Fatalf("new caller: %v", err)
	}
	var out createTransactionResponse
	err = caller.Call(context.Background(), http.MethodPost, TransactionBasePath+"/createtransaction", nil,
		createTransactionRequest{SendingAmount: "100.00", ReceivingCountry: "IN"}, &out)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out.TransactionRefNumber != "T-100" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestCall_WithoutTokenFailsBeforeIO(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer server.Close()

	caller, err := NewCaller(transport.NewExecutor(server.URL), staticTokens{})
	if err != nil {
		t.Fatalf("new caller: %v", err)
	}
	err = caller.Call(context.Background(), http.MethodGet, CustomerBasePath, nil, nil, nil)
	if !core.IsKind(err, core.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no upstream call")
	}
}

func TestCall_DecodesIntoValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("country_code") != "IN" {
			t.Errorf("expected query to be forwarded, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"currency_code":"INR"}`))
	}))
	defer server.Close()

	caller, _ := NewCaller(transport.NewExecutor(server.URL), staticTokens{token: "abc123"})
	var out core.Value
	err := caller.Call(context.Background(), http.MethodGet, MasterDataBasePath+"/currencies",
		map[string]string{"country_code": "IN"}, nil, &out)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	currency, ok := out.Lookup("currencyCode")
	if !ok {
		t.Fatalf("expected domain key, got %+v", out.Members())
	}
	if text, _ := currency.AsString(); text != "INR" {
		t.Fatalf("unexpected currency %q", text)
	}
}

func TestServerMessage_ReadsJSONErrorBody(t *testing.T) {
	err := core.NewHTTPError(http.StatusBadRequest, []byte(`{"message":"invalid beneficiary"}`))
	message, ok := ServerMessage(err)
	if !ok || message != "invalid beneficiary" {
		t.Fatalf("expected server message, got %q %v", message, ok)
	}
	if _, ok := ServerMessage(core.NewHTTPError(http.StatusBadGateway, []byte("<html/>"))); ok {
		t.Fatalf("expected no message for non-json body")
	}
	if _, ok := ServerMessage(core.NewNoDataError("empty")); ok {
		t.Fatalf("expected no message for non-http errors")
	}
}

func TestCall_DefaultHeadersNeverReplaceBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Values("Authorization"); len(got) != 1 || got[0] != "Bearer abc123" {
			t.Errorf("expected only the bearer token, got %v", got)
		}
		if got := r.Header.Get("X-Channel"); got != "mobile" {
			t.Errorf("expected default header, got %q", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	caller, err := NewCaller(transport.NewExecutor(server.URL), staticTokens{token: "abc123"},
		WithDefaultHeaders(map[string]string{
			"authorization": "Basic stale",
			"AUTHORIZATION": "Basic older",
			"x-channel":     "mobile",
		}),
	)
	if err != nil {
		t.Fatalf("new caller: %v", err)
	}
	for range 20 {
		if err := caller.Call(context.Background(), http.MethodGet, CustomerBasePath, nil, nil, nil); err != nil {
			t.Fatalf("call: %v", err)
		}
	}
}
