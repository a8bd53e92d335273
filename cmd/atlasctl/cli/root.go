// Package cli implements the atlasctl command tree. Every command that
// reaches a protected resource goes through the session guard first, the
// same way the console's views are gated.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas-erp/atlas-console/internal/app"
	"github.com/atlas-erp/atlas-console/internal/audit"
	"github.com/atlas-erp/atlas-console/internal/auth"
	"github.com/atlas-erp/atlas-console/internal/companies"
	"github.com/atlas-erp/atlas-console/internal/permissions"
	"github.com/atlas-erp/atlas-console/internal/platform/rest"
	"github.com/atlas-erp/atlas-console/internal/roles"
	"github.com/atlas-erp/atlas-console/internal/session"
	"github.com/atlas-erp/atlas-console/internal/users"
)

var rootCmd = &cobra.Command{
	Use:   "atlasctl",
	Short: "Admin console for the Atlas user-management backend",
	Long: `atlasctl manages companies, users, roles, and permissions on the
Atlas user-management backend.

Start with 'atlasctl login', then explore:

  atlasctl whoami
  atlasctl users list
  atlasctl roles list
  atlasctl watch`,
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// console bundles everything a command needs: config, the session core,
// and the resource clients.
type console struct {
	cfg    *app.Config
	logger *slog.Logger

	store   *session.FileStore
	manager *session.Manager
	guard   *session.Guard

	companies   *companies.Client
	users       *users.Client
	roles       *roles.Client
	permissions *permissions.Client
	audit       *audit.Client
}

// newConsole wires the session core and bootstraps it from the stored
// credential pair.
func newConsole(ctx context.Context) (*console, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	store := session.NewFileStore(cfg.CredentialsPath)
	rc := rest.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, store, logger)
	manager := session.NewManager(auth.NewClient(rc), store, logger)
	rc.SetUnauthorizedHook(manager.ForceLogout)
	manager.Bootstrap(ctx)

	return &console{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		manager:     manager,
		guard:       session.NewGuard(manager),
		companies:   companies.NewClient(rc),
		users:       users.NewClient(rc),
		roles:       roles.NewClient(rc),
		permissions: permissions.NewClient(rc),
		audit:       audit.NewClient(rc),
	}, nil
}

// require maps guard decisions to actionable CLI errors.
func (c *console) require(perm string) error {
	err := c.guard.Require(perm)
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return fmt.Errorf("not logged in - run 'atlasctl login' first")
	case errors.Is(err, session.ErrPermissionDenied):
		if perm != "" {
			return fmt.Errorf("permission denied: %s required", perm)
		}
		return fmt.Errorf("permission denied")
	}
	return err
}
