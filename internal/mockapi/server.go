package mockapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"

	"github.com/atlas-erp/atlas-console/internal/platform/httpx"
)

type contextKey string

const userKey contextKey = "mockapi.user"

// Server serves the mock user-management API.
type Server struct {
	logger   *slog.Logger
	store    *Store
	tokens   *TokenStore
	validate *validator.Validate
	router   chi.Router
}

// NewServer wires the router, middleware, and handlers.
func NewServer(logger *slog.Logger, store *Store, tokens *TokenStore) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:   logger,
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
	}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if err := secureMiddleware.Process(w, req); err != nil {
				s.logger.Warn("secure headers blocked request", slog.Any("error", err))
				httpx.Error(w, http.StatusInternalServerError, "")
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Post("/auth/login/", s.handleLogin)
		})
		r.Post("/auth/logout/", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/me/", s.handleMe)

			r.With(s.requirePermission("VIEW_COMPANIES")).Get("/companies/", s.handleListCompanies)
			r.With(s.requirePermission("CREATE_COMPANY")).Post("/companies/", s.handleCreateCompany)
			r.With(s.requirePermission("EDIT_COMPANY")).Put("/companies/{id}/", s.handleUpdateCompany)
			r.With(s.requirePermission("DELETE_COMPANY")).Delete("/companies/{id}/", s.handleDeleteCompany)

			r.With(s.requirePermission("VIEW_USERS")).Get("/users/", s.handleListUsers)
			r.With(s.requirePermission("CREATE_USER")).Post("/users/", s.handleCreateUser)
			r.With(s.requirePermission("EDIT_USER")).Put("/users/{id}/", s.handleUpdateUser)
			r.With(s.requirePermission("DELETE_USER")).Delete("/users/{id}/", s.handleDeleteUser)
			r.With(s.requirePermission("MANAGE_USER_ROLES")).Post("/users/{id}/assign_role/", s.handleAssignRole)
			r.With(s.requirePermission("MANAGE_USER_ROLES")).Delete("/users/{id}/remove_role/", s.handleRemoveRole)
			r.With(s.requirePermission("EDIT_USER")).Post("/users/{id}/assign_company/", s.handleAssignCompany)

			r.With(s.requirePermission("VIEW_ROLES")).Get("/roles/", s.handleListRoles)
			r.With(s.requirePermission("CREATE_ROLE")).Post("/roles/", s.handleCreateRole)
			r.With(s.requirePermission("EDIT_ROLE")).Put("/roles/{id}/", s.handleUpdateRole)
			r.With(s.requirePermission("DELETE_ROLE")).Delete("/roles/{id}/", s.handleDeleteRole)
			r.With(s.requirePermission("MANAGE_ROLE_PERMISSIONS")).Post("/roles/{id}/assign_permissions/", s.handleAssignPermissions)

			r.With(s.requirePermission("VIEW_PERMISSIONS")).Get("/permissions/", s.handleListPermissions)
			r.With(s.requirePermission("VIEW_AUDIT_LOGS")).Get("/audit-logs/", s.handleListAudit)
		})
	})
	return r
}

// requireAuth resolves the bearer token into the current user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		userID, err := s.tokens.Resolve(r.Context(), token)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "token expired or revoked")
			return
		}
		user, err := s.store.GetUser(userID)
		if err != nil || !user.IsActive {
			httpx.Error(w, http.StatusUnauthorized, "account unavailable")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requirePermission enforces a capability, with the superuser bypass.
func (s *Server) requirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil {
				httpx.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !user.IsSuperuser {
				granted := s.store.EffectivePermissions(user.ID)
				if !contains(granted, perm) {
					httpx.Error(w, http.StatusForbidden, "permission denied")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) *User {
	user, _ := r.Context().Value(userKey).(*User)
	return user
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
