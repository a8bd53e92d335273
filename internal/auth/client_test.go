package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-console/internal/auth"
	"github.com/atlas-erp/atlas-console/internal/platform/rest"
	"github.com/atlas-erp/atlas-console/internal/session"
)

type noTokens struct{}

func (noTokens) AccessToken() string { return "" }

func newClient(t *testing.T, handler http.Handler) (*auth.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rc := rest.NewClient(srv.URL, 5*time.Second, noTokens{}, nil)
	return auth.NewClient(rc), srv
}

func TestLoginSuccess(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req["username"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access":  "acc-token",
			"refresh": "ref-token",
			"user": map[string]any{
				"id": 4, "username": "alice", "email": "alice@example.com", "is_superuser": false,
			},
			"permissions": []string{"VIEW_USERS", "VIEW_ROLES"},
		})
	}))

	res, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "acc-token", res.Credentials.AccessToken)
	require.Equal(t, "ref-token", res.Credentials.RefreshToken)
	require.Equal(t, "alice", res.Principal.Username)
	require.True(t, res.Permissions.Has("VIEW_USERS"))
	require.True(t, res.Permissions.Has("VIEW_ROLES"))
}

func TestLoginRejected(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid username or password"})
	}))

	_, err := client.Login(context.Background(), "alice", "wrong")
	var loginErr *session.LoginError
	require.ErrorAs(t, err, &loginErr)
	require.Equal(t, "Invalid username or password", loginErr.Message)
}

func TestLoginRejectedWithoutMessage(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Login(context.Background(), "alice", "pw")
	var loginErr *session.LoginError
	require.ErrorAs(t, err, &loginErr)
	require.Equal(t, "Login failed", loginErr.Message)
}

func TestLoginEmptyFieldsRejectedLocally(t *testing.T) {
	called := false
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.Login(context.Background(), "", "")
	var loginErr *session.LoginError
	require.ErrorAs(t, err, &loginErr)
	require.False(t, called, "blank credentials must never reach the backend")
}

func TestLoginMalformedResponse(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access": "a", "refresh": "r"})
	}))

	_, err := client.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, auth.ErrMalformedResponse)
}

func TestLogoutPostsRefreshToken(t *testing.T) {
	var body map[string]string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/logout/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "logged out"})
	}))

	require.NoError(t, client.Logout(context.Background(), "ref-token"))
	require.Equal(t, "ref-token", body["refresh"])
}

func TestCurrentUser(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/me/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":        map[string]any{"id": 9, "username": "root", "is_superuser": true},
			"permissions": []string{},
		})
	}))

	principal, perms, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "root", principal.Username)
	require.True(t, principal.IsSuperuser)
	require.Empty(t, perms)
}

func TestCurrentUserUnauthorized(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, _, err := client.CurrentUser(context.Background())
	require.True(t, errors.Is(err, rest.ErrUnauthorized))
}
