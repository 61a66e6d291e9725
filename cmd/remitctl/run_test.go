package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-remitlink/core"
	"github.com/jessevdk/go-flags"
)

func newIdentityAndAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/realms/cdp/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"abc123","expires_in":3600}`))
	})
	mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"sending_amount":"10"}` {
			t.Errorf("unexpected body %s", body)
		}
		if r.URL.Query().Get("currency") != "USD" {
			t.Errorf("expected query parameter, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"quote_id":"Q-1"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRun_LoginTokenCallLogoutWithFileStore(t *testing.T) {
	server := newIdentityAndAPIServer(t)
	dir := t.TempDir()
	common := []string{"--base-url", server.URL, "--store", "file", "--store-url", dir, "--app-key", "cli-test-key"}
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		err := Run(context.Background(), append(append([]string{}, common...), args...), &out)
		return strings.TrimSpace(out.String()), err
	}

	if out, err := run("login", "-u", "alice", "-p", "s3cret"); err != nil || out != "authenticated" {
		t.Fatalf("login: %q %v", out, err)
	}
	if out, err := run("token"); err != nil || out != "abc123" {
		t.Fatalf("token: %q %v", out, err)
	}
	out, err := run("call", "-X", "POST", "-q", "currency:USD", "-d", `{"sending_amount":"10"}`, "/quotes")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != `{"quote_id":"Q-1"}` {
		t.Fatalf("unexpected call output %q", out)
	}
	if _, err := run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := run("token"); !core.IsKind(err, core.KindAuthentication) {
		t.Fatalf("expected authentication error after logout, got %v", err)
	}
}

func TestRun_TokenInspectRejectsOpaqueToken(t *testing.T) {
	server := newIdentityAndAPIServer(t)
	dir := t.TempDir()
	common := []string{"--base-url", server.URL, "--store", "file", "--store-url", dir, "--app-key", "cli-test-key"}

	var out bytes.Buffer
	if err := Run(context.Background(), append(common, "login", "-u", "alice", "-p", "s3cret"), &out); err != nil {
		t.Fatalf("login: %v", err)
	}
	err := Run(context.Background(), append(common, "token", "--inspect"), &out)
	if !core.IsKind(err, core.KindCodec) {
		t.Fatalf("expected codec error for opaque token, got %v", err)
	}
}

func TestRun_RejectsInvalidInvocations(t *testing.T) {
	var out bytes.Buffer
	ctx := context.Background()

	err := Run(ctx, []string{"--help"}, &out)
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
		t.Fatalf("expected help error, got %v", err)
	}
	if err := Run(ctx, []string{"--store", "file", "token"}, &out); err == nil {
		t.Fatalf("expected file store without app key to fail")
	}
	if err := Run(ctx, []string{"--store", "sqlite", "token"}, &out); err == nil {
		t.Fatalf("expected sqlite store without dsn to fail")
	}
	t.Setenv("REMITLINK_PASSWORD", "")
	if err := Run(ctx, []string{"--store", "memory", "login", "-u", "alice"}, &out); err == nil {
		t.Fatalf("expected missing password to fail")
	}
	err = Run(ctx, []string{"--store", "memory", "call", "-d", "{", "/quotes"}, &out)
	if !core.IsKind(err, core.KindEncoding) {
		t.Fatalf("expected encoding error for invalid data, got %v", err)
	}
}
