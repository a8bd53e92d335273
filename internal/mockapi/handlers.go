package mockapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atlas-erp/atlas-console/internal/platform/httpx"
)

type companyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type userDTO struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	IsActive    bool        `json:"is_active"`
	IsSuperuser bool        `json:"is_superuser"`
	Company     *companyRef `json:"company,omitempty"`
	Roles       []string    `json:"roles,omitempty"`
}

type roleDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (s *Server) userDTO(user *User) userDTO {
	dto := userDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		Roles:       s.store.UserRoles(user.ID),
	}
	if user.CompanyID != 0 {
		if company, ok := s.store.GetCompany(user.CompanyID); ok {
			dto.Company = &companyRef{ID: company.ID, Name: company.Name}
		}
	}
	return dto
}

func (s *Server) roleDTO(role Role) roleDTO {
	return roleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: s.store.RolePermissionNames(role.ID),
	}
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Error(w, http.StatusConflict, "already exists")
	default:
		s.logger.Error("store operation", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "")
	}
}

// --- auth ---

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	user, err := s.store.Authenticate(payload.Username, payload.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	access, refresh, err := s.tokens.Issue(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("issue tokens", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"access":      access,
		"refresh":     refresh,
		"user":        s.userDTO(user),
		"permissions": s.store.EffectivePermissions(user.ID),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Refresh string `json:"refresh"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.tokens.Revoke(r.Context(), payload.Refresh); err != nil {
		s.logger.Warn("revoke tokens", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":        s.userDTO(user),
		"permissions": s.store.EffectivePermissions(user.ID),
	})
}

// --- companies ---

type companyPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.ListCompanies())
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var payload companyPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	company, err := s.store.CreateCompany(payload.Name, payload.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "CREATE", "company", company.ID)
	httpx.JSON(w, http.StatusCreated, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload companyPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	company, err := s.store.UpdateCompany(id, payload.Name, payload.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "UPDATE", "company", company.ID)
	httpx.JSON(w, http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteCompany(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "DELETE", "company", id)
	httpx.JSON(w, http.StatusNoContent, nil)
}

// --- users ---

type createUserPayload struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	IsActive bool   `json:"is_active"`
}

type updateUserPayload struct {
	Email    string `json:"email" validate:"required,email"`
	IsActive bool   `json:"is_active"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	all := s.store.ListUsers()
	out := make([]userDTO, 0, len(all))
	for i := range all {
		out = append(out, s.userDTO(&all[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	user, err := s.store.CreateUser(payload.Username, payload.Email, payload.Password, payload.IsActive, false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "CREATE", "user", user.ID)
	httpx.JSON(w, http.StatusCreated, s.userDTO(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload updateUserPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid user payload")
		return
	}
	user, err := s.store.UpdateUser(id, payload.Email, payload.IsActive)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "UPDATE", "user", user.ID)
	httpx.JSON(w, http.StatusOK, s.userDTO(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteUser(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "DELETE", "user", id)
	httpx.JSON(w, http.StatusNoContent, nil)
}

type roleLinkPayload struct {
	RoleID int64 `json:"role_id" validate:"required"`
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload roleLinkPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.store.AssignRole(id, payload.RoleID); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "ASSIGN_ROLE", "user", id)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "role assigned"})
}

func (s *Server) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload roleLinkPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.store.RemoveRole(id, payload.RoleID); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "REMOVE_ROLE", "user", id)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "role removed"})
}

func (s *Server) handleAssignCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload struct {
		CompanyID int64 `json:"company_id" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.store.AssignCompany(id, payload.CompanyID); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "ASSIGN_COMPANY", "user", id)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "company assigned"})
}

// --- roles ---

type rolePayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	all := s.store.ListRoles()
	out := make([]roleDTO, 0, len(all))
	for _, role := range all {
		out = append(out, s.roleDTO(role))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var payload rolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	role, err := s.store.CreateRole(payload.Name, payload.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "CREATE", "role", role.ID)
	httpx.JSON(w, http.StatusCreated, s.roleDTO(*role))
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload rolePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	role, err := s.store.UpdateRole(id, payload.Name, payload.Description)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "UPDATE", "role", role.ID)
	httpx.JSON(w, http.StatusOK, s.roleDTO(*role))
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.store.DeleteRole(id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "DELETE", "role", id)
	httpx.JSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAssignPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return
	}
	var payload struct {
		Permissions []int64 `json:"permissions"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.store.SetRolePermissions(id, payload.Permissions); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.store.RecordAudit(currentUser(r).Username, "ASSIGN_PERMISSIONS", "role", id)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "permissions assigned"})
}

// --- permissions & audit ---

func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, s.store.ListPermissions())
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	httpx.JSON(w, http.StatusOK, s.store.ListAudit(q.Get("action"), q.Get("actor")))
}
