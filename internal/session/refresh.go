package session

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRefreshInterval is how often the refresher re-fetches the
// principal's permission set when no interval is configured.
const DefaultRefreshInterval = 5 * time.Second

// Refresher detects out-of-band permission changes, such as an administrator
// revoking a role while the session is open, without requiring a re-login.
type Refresher struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
	notify   func(PermissionSet)
}

// NewRefresher constructs a Refresher. The notify callback fires once per
// observed change with the fresh permission set; it may be nil.
func NewRefresher(manager *Manager, interval time.Duration, logger *slog.Logger, notify func(PermissionSet)) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		manager:  manager,
		interval: interval,
		logger:   logger,
		notify:   notify,
	}
}

// Run polls until the context is cancelled or the principal goes away.
// A tick issues at most one fetch; the next tick is not consumed until the
// previous fetch has settled, which bounds outstanding requests to one.
// Fetch failures are logged and retried on the next tick: a transient error
// must not tear down the session. Only the transport's global 401 handling
// forces a logout.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.manager.Authenticated() {
				return
			}
			changed, err := r.manager.RefreshPermissions(ctx)
			if err != nil {
				r.logger.Warn("permission refresh", slog.Any("error", err))
				continue
			}
			if changed && r.notify != nil {
				r.notify(r.manager.Snapshot().Permissions)
			}
		}
	}
}
