package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv    *httptest.Server
	store  *Store
	tokens *TokenStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore()
	if err := Seed(store); err != nil {
		t.Fatal(err)
	}
	tokens := NewTokenStore(client, "test-secret", time.Hour, 24*time.Hour)
	server := NewServer(slog.New(slog.DiscardHandler), store, tokens)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, tokens: tokens}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res, buf.Bytes()
}

type loginResult struct {
	Access      string   `json:"access"`
	Refresh     string   `json:"refresh"`
	Permissions []string `json:"permissions"`
	User        struct {
		ID          int64  `json:"id"`
		Username    string `json:"username"`
		IsSuperuser bool   `json:"is_superuser"`
	} `json:"user"`
}

func (e *testEnv) login(t *testing.T, username, password string) loginResult {
	t.Helper()
	res, body := e.request(t, http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "login response: %s", body)
	var out loginResult
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestLoginIssuesSessionPayload(t *testing.T) {
	env := newTestEnv(t)

	out := env.login(t, "viewer", "viewer-password")
	require.NotEmpty(t, out.Access)
	require.NotEmpty(t, out.Refresh)
	require.Equal(t, "viewer", out.User.Username)
	require.False(t, out.User.IsSuperuser)
	require.Contains(t, out.Permissions, "VIEW_USERS")
	require.NotContains(t, out.Permissions, "CREATE_USER")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.request(t, http.MethodPost, "/api/auth/login/", "", map[string]string{
		"username": "viewer", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "Invalid username or password", payload.Message)
}

func TestLoginValidatesPayload(t *testing.T) {
	env := newTestEnv(t)
	res, _ := env.request(t, http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "viewer"})
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	res, _ := env.request(t, http.MethodGet, "/api/auth/me/", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = env.request(t, http.MethodGet, "/api/auth/me/", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestMeReturnsCurrentSession(t *testing.T) {
	env := newTestEnv(t)
	out := env.login(t, "viewer", "viewer-password")

	res, body := env.request(t, http.MethodGet, "/api/auth/me/", out.Access, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me struct {
		User struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
			Company  *struct {
				Name string `json:"name"`
			} `json:"company"`
		} `json:"user"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, "viewer", me.User.Username)
	require.Contains(t, me.User.Roles, "Read Only")
	require.NotNil(t, me.User.Company)
	require.Equal(t, "Acme Holdings", me.User.Company.Name)
	require.Contains(t, me.Permissions, "VIEW_ROLES")
}

func TestLogoutRevokesPair(t *testing.T) {
	env := newTestEnv(t)
	out := env.login(t, "viewer", "viewer-password")

	res, _ := env.request(t, http.MethodPost, "/api/auth/logout/", "", map[string]string{"refresh": out.Refresh})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = env.request(t, http.MethodGet, "/api/auth/me/", out.Access, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLogoutUnknownTokenIsOK(t *testing.T) {
	env := newTestEnv(t)
	res, _ := env.request(t, http.MethodPost, "/api/auth/logout/", "", map[string]string{"refresh": "never-issued"})
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRevokedAccessTokenRejectedBeforeExpiry(t *testing.T) {
	env := newTestEnv(t)
	out := env.login(t, "viewer", "viewer-password")

	// The JWT is still inside its validity window; only the server-side
	// record is gone.
	require.NoError(t, env.tokens.RevokeAccess(context.Background(), out.Access))

	res, _ := env.request(t, http.MethodGet, "/api/auth/me/", out.Access, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestPermissionGateForbidsViewer(t *testing.T) {
	env := newTestEnv(t)
	out := env.login(t, "viewer", "viewer-password")

	res, _ := env.request(t, http.MethodGet, "/api/users/", out.Access, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := env.request(t, http.MethodPost, "/api/users/", out.Access, map[string]any{
		"username": "newbie", "email": "newbie@atlas.local", "password": "long-password", "is_active": true,
	})
	require.Equal(t, http.StatusForbidden, res.StatusCode, "body: %s", body)
}

func TestSuperuserBypassesPermissionGates(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")
	require.True(t, admin.User.IsSuperuser)

	res, body := env.request(t, http.MethodPost, "/api/users/", admin.Access, map[string]any{
		"username": "newbie", "email": "newbie@atlas.local", "password": "long-password", "is_active": true,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "body: %s", body)

	var created struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, "newbie", created.Username)
}

func TestRoleGrantVisibleOnNextMe(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")
	viewer := env.login(t, "viewer", "viewer-password")
	require.NotContains(t, viewer.Permissions, "CREATE_USER")

	roleID := env.store.ListRoles()[0].ID
	grant := env.store.PermissionIDs("VIEW_USERS", "VIEW_ROLES", "VIEW_COMPANIES",
		"VIEW_PERMISSIONS", "VIEW_AUDIT_LOGS", "CREATE_USER")
	res, body := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/roles/%d/assign_permissions/", roleID), admin.Access,
		map[string]any{"permissions": grant})
	require.Equal(t, http.StatusOK, res.StatusCode, "body: %s", body)

	// The viewer's open session picks up the change on its next poll.
	res, body = env.request(t, http.MethodGet, "/api/auth/me/", viewer.Access, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me struct {
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	require.Contains(t, me.Permissions, "CREATE_USER")
}

func TestMutationsAreAudited(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")

	res, _ := env.request(t, http.MethodPost, "/api/companies/", admin.Access, map[string]string{
		"name": "Globex", "description": "Second tenant",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, body := env.request(t, http.MethodGet, "/api/audit-logs/?action=CREATE&actor=admin", admin.Access, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var entries []AuditEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.NotEmpty(t, entries)
	require.Equal(t, "company", entries[0].Entity)
	require.Equal(t, "admin", entries[0].Actor)
}

func TestAuditLogsRequirePermission(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")
	viewer := env.login(t, "viewer", "viewer-password")

	// Viewer holds VIEW_AUDIT_LOGS through the seeded role.
	res, _ := env.request(t, http.MethodGet, "/api/audit-logs/", viewer.Access, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Dropping the role revokes access on the very next request.
	viewerID := viewer.User.ID
	roleID := env.store.ListRoles()[0].ID
	res, _ = env.request(t, http.MethodDelete,
		fmt.Sprintf("/api/users/%d/remove_role/", viewerID), admin.Access,
		map[string]int64{"role_id": roleID})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = env.request(t, http.MethodGet, "/api/audit-logs/", viewer.Access, nil)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestUnknownResourceIs404(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")

	res, _ := env.request(t, http.MethodPut, "/api/companies/999/", admin.Access, map[string]string{"name": "X"})
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDuplicateCompanyIs409(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin-password")

	res, _ := env.request(t, http.MethodPost, "/api/companies/", admin.Access, map[string]string{"name": "Acme Holdings"})
	require.Equal(t, http.StatusConflict, res.StatusCode)
}
