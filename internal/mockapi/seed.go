package mockapi

import (
	"fmt"

	"github.com/atlas-erp/atlas-console/internal/rbac"
)

// Seed populates the store with a development fixture: one tenant, a
// superuser, and a viewer account holding read-only roles.
func Seed(store *Store) error {
	company, err := store.CreateCompany("Acme Holdings", "Demo tenant")
	if err != nil {
		return fmt.Errorf("mockapi: seed company: %w", err)
	}

	admin, err := store.CreateUser("admin", "admin@atlas.local", "admin-password", true, true)
	if err != nil {
		return fmt.Errorf("mockapi: seed admin: %w", err)
	}
	if err := store.AssignCompany(admin.ID, company.ID); err != nil {
		return err
	}

	viewer, err := store.CreateUser("viewer", "viewer@atlas.local", "viewer-password", true, false)
	if err != nil {
		return fmt.Errorf("mockapi: seed viewer: %w", err)
	}
	if err := store.AssignCompany(viewer.ID, company.ID); err != nil {
		return err
	}

	readOnly, err := store.CreateRole("Read Only", "View access across the console")
	if err != nil {
		return fmt.Errorf("mockapi: seed role: %w", err)
	}
	viewPerms := store.PermissionIDs(
		rbac.ViewUsers, rbac.ViewRoles, rbac.ViewCompanies,
		rbac.ViewPermissions, rbac.ViewAuditLogs,
	)
	if err := store.SetRolePermissions(readOnly.ID, viewPerms); err != nil {
		return err
	}
	if err := store.AssignRole(viewer.ID, readOnly.ID); err != nil {
		return err
	}

	if _, err := store.CreateRole("User Manager", "Full control over user accounts"); err != nil {
		return fmt.Errorf("mockapi: seed role: %w", err)
	}
	return nil
}
