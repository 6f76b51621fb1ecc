package authz

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes permission introspection endpoints.
type Handler struct {
	mw Middleware
}

// NewHandler builds a Handler.
func NewHandler(mw Middleware) *Handler {
	return &Handler{mw: mw}
}

// MountRoutes registers the routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.mw.Resolve).Get("/me/permissions", h.myPermissions)
	r.With(h.mw.Require(PermViewAuditTrail, PermManageOrganization)).Get("/permissions", h.permissionTable)
}

type myPermissionsResponse struct {
	Role        Role         `json:"role"`
	RoleLabel   string       `json:"role_label"`
	Permissions []Permission `json:"permissions"`
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	if !scope.FromContext(r.Context()).Authenticated() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	role := RoleFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, myPermissionsResponse{
		Role:        role,
		RoleLabel:   role.Label(),
		Permissions: Granted(role),
	})
}

type permissionEntry struct {
	Permission Permission `json:"permission"`
	Roles      []Role     `json:"roles"`
}

func (h *Handler) permissionTable(w http.ResponseWriter, r *http.Request) {
	entries := make([]permissionEntry, 0, len(permissionOrder))
	for _, p := range Permissions() {
		entries = append(entries, permissionEntry{Permission: p, Roles: AllowedRoles(p)})
	}
	httpx.JSON(w, http.StatusOK, entries)
}
