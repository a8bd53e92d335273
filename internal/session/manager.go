package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrLoginInProgress is returned when a login is attempted while another
// login call has not settled yet.
var ErrLoginInProgress = errors.New("session: login already in progress")

// LoginError carries a user-displayable login failure message. The session
// state is untouched when a login fails.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

// LoginResult is the payload of a successful login call.
type LoginResult struct {
	Credentials Credentials
	Principal   *Principal
	Permissions PermissionSet
}

// API is the authentication surface the manager consumes.
type API interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context) (*Principal, PermissionSet, error)
}

// Manager is the single source of truth for the current principal and their
// permission set. All mutations are serialized behind one mutex so a refresh
// result can never interleave with a concurrent logout.
type Manager struct {
	api    API
	store  CredentialStore
	logger *slog.Logger

	mu           sync.Mutex
	principal    *Principal
	permissions  PermissionSet
	loading      bool
	loginBusy    bool
	bootstrapped bool

	group singleflight.Group
}

// NewManager constructs a Manager in the Loading state.
func NewManager(api API, store CredentialStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:         api,
		store:       store,
		logger:      logger,
		permissions: PermissionSet{},
		loading:     true,
	}
}

// Bootstrap resolves the initial session from the stored credential pair.
// It runs at most once per process; later calls are no-ops. Any failure
// erases the stored pair and lands the session in the unauthenticated
// state, so the caller never gets an error: the guard reads the outcome.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return
	}
	m.bootstrapped = true
	m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil {
		m.logger.Warn("load credentials", slog.Any("error", err))
	}
	if err != nil || !creds.Valid() {
		m.settle(nil, nil)
		return
	}

	principal, perms, err := m.fetchCurrentUser(ctx)
	if err != nil {
		m.logger.Warn("bootstrap current user", slog.Any("error", err))
		if cerr := m.store.Clear(); cerr != nil {
			m.logger.Warn("clear credentials", slog.Any("error", cerr))
		}
		m.settle(nil, nil)
		return
	}
	m.settle(principal, perms)
}

// Login exchanges credentials for a token pair and populates the session
// atomically. A failed login mutates nothing. Login is not re-entrant; a
// second call while one is pending gets ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	if m.loginBusy {
		m.mu.Unlock()
		return ErrLoginInProgress
	}
	m.loginBusy = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loginBusy = false
		m.mu.Unlock()
	}()

	res, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := m.store.Save(res.Credentials); err != nil {
		return err
	}
	m.settle(res.Principal, res.Permissions)
	return nil
}

// Logout invalidates the session remotely on a best-effort basis, then
// unconditionally clears local state.
func (m *Manager) Logout(ctx context.Context) {
	creds, err := m.store.Load()
	if err != nil {
		m.logger.Warn("load credentials for logout", slog.Any("error", err))
	}
	if creds.RefreshToken != "" {
		if err := m.api.Logout(ctx, creds.RefreshToken); err != nil {
			m.logger.Warn("logout request", slog.Any("error", err))
		}
	}
	m.ForceLogout()
}

// ForceLogout resets the session without a remote call. It is registered as
// the transport's 401 hook, so token expiry anywhere clears the session.
func (m *Manager) ForceLogout() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clear credentials", slog.Any("error", err))
	}
	m.mu.Lock()
	m.principal = nil
	m.permissions = PermissionSet{}
	m.loading = false
	m.mu.Unlock()
}

// ReplacePermissions swaps the permission set on the current principal.
// It reports whether the set actually changed: replacing with an equal set
// is a no-op, and so is any call while no principal is present, which is
// what discards refresh results that resolve after a logout.
func (m *Manager) ReplacePermissions(next PermissionSet) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.principal == nil {
		return false
	}
	if m.permissions.Equal(next) {
		return false
	}
	m.permissions = next.Clone()
	return true
}

// RefreshPermissions re-fetches the principal's permission set and
// reconciles it into the session. It reports whether the set changed.
func (m *Manager) RefreshPermissions(ctx context.Context) (bool, error) {
	if !m.Authenticated() {
		return false, nil
	}
	_, perms, err := m.fetchCurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return m.ReplacePermissions(perms), nil
}

// Authenticated reports whether a principal is present.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.principal != nil
}

// Snapshot returns a consistent copy of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Permissions:   m.permissions.Clone(),
		Authenticated: m.principal != nil,
		Loading:       m.loading,
	}
	if m.principal != nil {
		p := *m.principal
		snap.Principal = &p
	}
	return snap
}

// settle installs the bootstrap/login outcome atomically.
func (m *Manager) settle(principal *Principal, perms PermissionSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principal = principal
	if perms == nil {
		perms = PermissionSet{}
	}
	m.permissions = perms.Clone()
	m.loading = false
}

type currentUser struct {
	principal   *Principal
	permissions PermissionSet
}

// fetchCurrentUser collapses concurrent current-user fetches (bootstrap vs
// refresh tick) into a single request.
func (m *Manager) fetchCurrentUser(ctx context.Context) (*Principal, PermissionSet, error) {
	v, err, _ := m.group.Do("current-user", func() (any, error) {
		principal, perms, err := m.api.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		return currentUser{principal: principal, permissions: perms}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	cu := v.(currentUser)
	return cu.principal, cu.permissions, nil
}
