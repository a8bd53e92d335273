// Package session holds the console's view of the authenticated principal:
// who is logged in, what they may do, and how that set stays fresh while
// the process runs.
package session

import "sort"

// CompanyRef points at the tenant a principal belongs to.
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Principal is the authenticated actor. The console holds a read-only cached
// copy owned by the backend; it is only ever replaced wholesale on re-fetch.
type Principal struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	IsSuperuser bool        `json:"is_superuser"`
	Company     *CompanyRef `json:"company,omitempty"`
}

// PermissionSet is the authoritative set of capability names granted to a
// principal. Membership only: no duplicates, order irrelevant. It is rebuilt
// wholesale on every refresh, never derived locally from roles.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from permission names.
func NewPermissionSet(names ...string) PermissionSet {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Has reports membership of a single permission name.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Equal compares two sets by value.
func (s PermissionSet) Equal(other PermissionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if _, ok := other[name]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for name := range s {
		out[name] = struct{}{}
	}
	return out
}

// Names returns the permission names in sorted order.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot is a consistent copy of the session state, safe to consult from
// any goroutine without further locking.
type Snapshot struct {
	Principal     *Principal
	Permissions   PermissionSet
	Authenticated bool
	Loading       bool
}

// HasPermission answers whether the current principal holds the capability.
// Superusers satisfy every check; without a principal nothing is granted.
func (s Snapshot) HasPermission(name string) bool {
	if s.Principal == nil {
		return false
	}
	if s.Principal.IsSuperuser {
		return true
	}
	return s.Permissions.Has(name)
}
