// Package rbac names the capability catalog of the user-management backend.
// The names are owned by the backend; the console only references them when
// gating views and commands. It never derives a principal's grants from
// roles locally.
package rbac

// Capability names as granted by the backend.
const (
	ViewUsers  = "VIEW_USERS"
	CreateUser = "CREATE_USER"
	EditUser   = "EDIT_USER"
	DeleteUser = "DELETE_USER"

	ViewRoles  = "VIEW_ROLES"
	CreateRole = "CREATE_ROLE"
	EditRole   = "EDIT_ROLE"
	DeleteRole = "DELETE_ROLE"

	ViewCompanies = "VIEW_COMPANIES"
	CreateCompany = "CREATE_COMPANY"
	EditCompany   = "EDIT_COMPANY"
	DeleteCompany = "DELETE_COMPANY"

	ViewPermissions = "VIEW_PERMISSIONS"
	ViewAuditLogs   = "VIEW_AUDIT_LOGS"

	ManageUserRoles       = "MANAGE_USER_ROLES"
	ManageRolePermissions = "MANAGE_ROLE_PERMISSIONS"
)

// All returns the full catalog, used by the mock backend to seed its
// permission table.
func All() []string {
	return []string{
		ViewUsers, CreateUser, EditUser, DeleteUser,
		ViewRoles, CreateRole, EditRole, DeleteRole,
		ViewCompanies, CreateCompany, EditCompany, DeleteCompany,
		ViewPermissions, ViewAuditLogs,
		ManageUserRoles, ManageRolePermissions,
	}
}
