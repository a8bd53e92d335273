package session

import "errors"

// Decision is the outcome of gating access to a protected view.
type Decision int

const (
	// DecisionPending means the first bootstrap has not resolved yet; the
	// caller should show a spinner rather than flashing a redirect.
	DecisionPending Decision = iota
	// DecisionAllow admits the view.
	DecisionAllow
	// DecisionLogin redirects an unauthenticated caller to login.
	DecisionLogin
	// DecisionForbidden renders a forbidden state for an authenticated
	// caller missing the required permission.
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	case DecisionForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Evaluate gates a view that optionally requires a permission. An empty
// required name only demands authentication.
func Evaluate(snap Snapshot, required string) Decision {
	if snap.Loading {
		return DecisionPending
	}
	if !snap.Authenticated {
		return DecisionLogin
	}
	if required != "" && !snap.HasPermission(required) {
		return DecisionForbidden
	}
	return DecisionAllow
}

// Guard errors surfaced to CLI callers.
var (
	ErrSessionLoading   = errors.New("session: still resolving")
	ErrNotLoggedIn      = errors.New("session: not logged in")
	ErrPermissionDenied = errors.New("session: permission denied")
)

// Guard adapts decisions to errors for command-style callers.
type Guard struct {
	manager *Manager
}

// NewGuard constructs a Guard over the manager.
func NewGuard(manager *Manager) *Guard {
	return &Guard{manager: manager}
}

// Require returns nil when the current session may access a view guarded by
// the given permission.
func (g *Guard) Require(required string) error {
	switch Evaluate(g.manager.Snapshot(), required) {
	case DecisionPending:
		return ErrSessionLoading
	case DecisionLogin:
		return ErrNotLoggedIn
	case DecisionForbidden:
		return ErrPermissionDenied
	}
	return nil
}
