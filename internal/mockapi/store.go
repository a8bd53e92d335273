// Package mockapi implements the user-management REST surface the console
// consumes, for development and tests. State lives in memory behind one
// mutex; issued token pairs live in redis so revocation behaves like the
// real backend.
package mockapi

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-erp/atlas-console/internal/rbac"
)

// Store errors.
var (
	ErrNotFound           = errors.New("mockapi: not found")
	ErrDuplicate          = errors.New("mockapi: duplicate")
	ErrInvalidCredentials = errors.New("mockapi: invalid credentials")
)

// Company is a tenant record.
type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is a managed account. The password hash never leaves the store.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CompanyID    int64
}

// Role groups permissions.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Permission is one catalog entry.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AuditEntry records one mutation.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds the fixture state.
type Store struct {
	mu sync.Mutex

	companies map[int64]*Company
	users     map[int64]*User
	roles     map[int64]*Role
	perms     map[int64]*Permission
	permByID  map[int64]string

	rolePerms map[int64]map[int64]struct{}
	userRoles map[int64]map[int64]struct{}

	audit []AuditEntry

	nextCompanyID int64
	nextUserID    int64
	nextRoleID    int64
}

// NewStore builds a Store seeded with the permission catalog.
func NewStore() *Store {
	s := &Store{
		companies:     make(map[int64]*Company),
		users:         make(map[int64]*User),
		roles:         make(map[int64]*Role),
		perms:         make(map[int64]*Permission),
		permByID:      make(map[int64]string),
		rolePerms:     make(map[int64]map[int64]struct{}),
		userRoles:     make(map[int64]map[int64]struct{}),
		nextCompanyID: 1,
		nextUserID:    1,
		nextRoleID:    1,
	}
	for i, name := range rbac.All() {
		id := int64(i + 1)
		s.perms[id] = &Permission{ID: id, Name: name}
		s.permByID[id] = name
	}
	return s
}

// Authenticate checks username/password credentials.
func (s *Store) Authenticate(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findByUsername(username)
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := *user
	return &u, nil
}

// GetUser returns a copy of the user.
func (s *Store) GetUser(id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// EffectivePermissions returns the deduplicated permission names granted to
// a user through their roles, sorted for stable responses.
func (s *Store) EffectivePermissions(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectivePermissionsLocked(userID)
}

func (s *Store) effectivePermissionsLocked(userID int64) []string {
	seen := make(map[string]struct{})
	for roleID := range s.userRoles[userID] {
		for permID := range s.rolePerms[roleID] {
			if name, ok := s.permByID[permID]; ok {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *Store) CreateUser(username, email, password string, active, superuser bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByUsername(username) != nil {
		return nil, ErrDuplicate
	}
	user := &User{
		ID:           s.nextUserID,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
		IsSuperuser:  superuser,
	}
	s.nextUserID++
	s.users[user.ID] = user
	u := *user
	return &u, nil
}

// UpdateUser replaces an account's writable fields.
func (s *Store) UpdateUser(id int64, email string, active bool) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user.Email = email
	user.IsActive = active
	u := *user
	return &u, nil
}

// DeleteUser removes an account and its role links.
func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.userRoles, id)
	return nil
}

// ListUsers returns all accounts ordered by ID.
func (s *Store) ListUsers() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssignRole links a role to a user.
func (s *Store) AssignRole(userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return ErrNotFound
	}
	if s.userRoles[userID] == nil {
		s.userRoles[userID] = make(map[int64]struct{})
	}
	s.userRoles[userID][roleID] = struct{}{}
	return nil
}

// RemoveRole unlinks a role from a user.
func (s *Store) RemoveRole(userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userRoles[userID][roleID]; !ok {
		return ErrNotFound
	}
	delete(s.userRoles[userID], roleID)
	return nil
}

// AssignCompany moves a user into a tenant.
func (s *Store) AssignCompany(userID, companyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := s.companies[companyID]; !ok {
		return ErrNotFound
	}
	user.CompanyID = companyID
	return nil
}

// UserRoles returns the names of the roles linked to a user.
func (s *Store) UserRoles(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.userRoles[userID]))
	for roleID := range s.userRoles[userID] {
		if role, ok := s.roles[roleID]; ok {
			names = append(names, role.Name)
		}
	}
	sort.Strings(names)
	return names
}

// CreateCompany registers a tenant.
func (s *Store) CreateCompany(name, description string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.Name == name {
			return nil, ErrDuplicate
		}
	}
	company := &Company{
		ID:          s.nextCompanyID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextCompanyID++
	s.companies[company.ID] = company
	c := *company
	return &c, nil
}

// UpdateCompany replaces a tenant's writable fields.
func (s *Store) UpdateCompany(id int64, name, description string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	company.Name = name
	company.Description = description
	c := *company
	return &c, nil
}

// DeleteCompany removes a tenant.
func (s *Store) DeleteCompany(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

// ListCompanies returns all tenants ordered by ID.
func (s *Store) ListCompanies() []Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetCompany returns a copy of a tenant record.
func (s *Store) GetCompany(id int64) (*Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, false
	}
	c := *company
	return &c, true
}

// CreateRole registers a role.
func (s *Store) CreateRole(name, description string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == name {
			return nil, ErrDuplicate
		}
	}
	role := &Role{ID: s.nextRoleID, Name: name, Description: description}
	s.nextRoleID++
	s.roles[role.ID] = role
	r := *role
	return &r, nil
}

// UpdateRole replaces a role's writable fields.
func (s *Store) UpdateRole(id int64, name, description string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	role.Name = name
	role.Description = description
	r := *role
	return &r, nil
}

// DeleteRole removes a role and every link to it.
func (s *Store) DeleteRole(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return ErrNotFound
	}
	delete(s.roles, id)
	delete(s.rolePerms, id)
	for userID := range s.userRoles {
		delete(s.userRoles[userID], id)
	}
	return nil
}

// ListRoles returns all roles ordered by ID.
func (s *Store) ListRoles() []Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RolePermissionNames returns the permission names attached to a role.
func (s *Store) RolePermissionNames(roleID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.rolePerms[roleID]))
	for permID := range s.rolePerms[roleID] {
		if name, ok := s.permByID[permID]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetRolePermissions replaces a role's permission set. Links not in the new
// set are detached, missing ones attached.
func (s *Store) SetRolePermissions(roleID int64, permissionIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return ErrNotFound
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		if _, ok := s.perms[id]; !ok {
			return ErrNotFound
		}
		keep[id] = struct{}{}
	}
	s.rolePerms[roleID] = keep
	return nil
}

// ListPermissions returns the catalog ordered by ID.
func (s *Store) ListPermissions() []Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Permission, 0, len(s.perms))
	for _, p := range s.perms {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PermissionIDs maps permission names to their catalog IDs, skipping
// unknown names.
func (s *Store) PermissionIDs(names ...string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(names))
	for id, name := range s.permByID {
		for _, want := range names {
			if name == want {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RecordAudit appends an audit entry.
func (s *Store) RecordAudit(actor, action, entity string, entityID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, AuditEntry{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Entity:    entity,
		EntityID:  strconv.FormatInt(entityID, 10),
		Timestamp: time.Now().UTC(),
	})
}

// ListAudit returns entries newest first, optionally filtered.
func (s *Store) ListAudit(action, actor string) []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEntry, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		entry := s.audit[i]
		if action != "" && entry.Action != action {
			continue
		}
		if actor != "" && entry.Actor != actor {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (s *Store) findByUsername(username string) *User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}
