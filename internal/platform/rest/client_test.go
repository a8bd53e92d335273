package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atlas-erp/atlas-console/internal/platform/rest"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func newClient(t *testing.T, srv *httptest.Server, tokens rest.TokenSource) *rest.Client {
	t.Helper()
	return rest.NewClient(srv.URL, 5*time.Second, tokens, nil)
}

func TestBearerHeaderAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticTokens("tok-123"))
	var out map[string]string
	if err := c.Get(context.Background(), "/api/thing/", &out); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", got)
	}
	if out["ok"] != "yes" {
		t.Fatalf("decoded %v", out)
	}
}

func TestNoHeaderWithoutToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(t, srv, staticTokens(""))
	if err := c.Get(context.Background(), "/api/thing/", nil); err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestUnauthorizedHookFiresForAuthenticatedRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := newClient(t, srv, staticTokens("stale"))
	c.SetUnauthorizedHook(func() { fired.Add(1) })

	err := c.Get(context.Background(), "/api/users/", nil)
	if !errors.Is(err, rest.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fired.Load() != 1 {
		t.Fatalf("hook fired %d times", fired.Load())
	}
}

func TestUnauthorizedHookSkippedForAnonymousRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid username or password"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := newClient(t, srv, staticTokens(""))
	c.SetUnauthorizedHook(func() { fired.Add(1) })

	err := c.Post(context.Background(), "/api/auth/login/", map[string]string{"username": "x"}, nil)
	if !errors.Is(err, rest.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	// A login rejection must not tear down session state.
	if fired.Load() != 0 {
		t.Fatalf("hook fired %d times for an anonymous request", fired.Load())
	}
}

func TestErrorDecoding(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantIs  error
	}{
		{"message field", http.StatusForbidden, `{"message":"permission required"}`, "permission required", rest.ErrForbidden},
		{"detail field", http.StatusNotFound, `{"detail":"no such user"}`, "no such user", rest.ErrNotFound},
		{"garbage body", http.StatusInternalServerError, `<html>`, "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := newClient(t, srv, staticTokens("t")).Get(context.Background(), "/api/x/", nil)
			var apiErr *rest.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tc.status || apiErr.Message != tc.wantMsg {
				t.Fatalf("got status=%d message=%q", apiErr.Status, apiErr.Message)
			}
			if tc.wantIs != nil && !errors.Is(err, tc.wantIs) {
				t.Fatalf("errors.Is(%v) = false", tc.wantIs)
			}
		})
	}
}

func TestDeleteSendsBody(t *testing.T) {
	var body map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newClient(t, srv, staticTokens("t"))
	if err := c.Delete(context.Background(), "/api/users/1/remove_role/", map[string]int64{"role_id": 9}); err != nil {
		t.Fatal(err)
	}
	if body["role_id"] != 9 {
		t.Fatalf("body = %v", body)
	}
}

func TestContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := newClient(t, srv, staticTokens("t")).Get(ctx, "/api/slow/", nil)
	if err == nil {
		t.Fatal("expected a context error")
	}
}
