package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlas-erp/atlas-console/internal/session"
)

func TestPermissionSetMembership(t *testing.T) {
	set := session.NewPermissionSet("VIEW_USERS", "CREATE_ROLE", "VIEW_USERS", "")

	assert.True(t, set.Has("VIEW_USERS"))
	assert.True(t, set.Has("CREATE_ROLE"))
	assert.False(t, set.Has("DELETE_USER"))
	assert.Len(t, set, 2, "duplicates and empty names must not count")
}

func TestPermissionSetEqualIgnoresOrder(t *testing.T) {
	a := session.NewPermissionSet("VIEW_USERS", "CREATE_USER")
	b := session.NewPermissionSet("CREATE_USER", "VIEW_USERS")
	c := session.NewPermissionSet("VIEW_USERS")

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))
}

func TestPermissionSetCloneIsIndependent(t *testing.T) {
	a := session.NewPermissionSet("VIEW_USERS")
	b := a.Clone()
	b["CREATE_USER"] = struct{}{}

	assert.False(t, a.Has("CREATE_USER"))
	assert.True(t, b.Has("CREATE_USER"))
}

func TestPermissionSetNamesSorted(t *testing.T) {
	set := session.NewPermissionSet("VIEW_USERS", "CREATE_ROLE", "DELETE_USER")
	assert.Equal(t, []string{"CREATE_ROLE", "DELETE_USER", "VIEW_USERS"}, set.Names())
}

func TestHasPermissionSuperuserBypass(t *testing.T) {
	snap := session.Snapshot{
		Principal:     &session.Principal{ID: 1, IsSuperuser: true},
		Permissions:   session.PermissionSet{},
		Authenticated: true,
	}
	assert.True(t, snap.HasPermission("VIEW_USERS"))
	assert.True(t, snap.HasPermission("ANYTHING_AT_ALL"))
}

func TestHasPermissionMembership(t *testing.T) {
	snap := session.Snapshot{
		Principal:     &session.Principal{ID: 2},
		Permissions:   session.NewPermissionSet("VIEW_USERS"),
		Authenticated: true,
	}
	assert.True(t, snap.HasPermission("VIEW_USERS"))
	assert.False(t, snap.HasPermission("DELETE_USER"))
}

func TestHasPermissionNoPrincipal(t *testing.T) {
	snap := session.Snapshot{Permissions: session.NewPermissionSet("VIEW_USERS")}
	assert.False(t, snap.HasPermission("VIEW_USERS"))
}
