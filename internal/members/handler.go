package members

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the members JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/members.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.Require(authz.PermManageMembers))
	r.Get("/", h.list)
	r.Post("/", h.assign)
	r.Put("/{userID}", h.change)
	r.Delete("/{userID}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var in AssignInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	ctx := r.Context()
	if err := h.service.AssignRole(ctx, scope.FromContext(ctx), authz.RoleFromContext(ctx), in.UserID, in.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) change(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var in RoleInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	ctx := r.Context()
	if err := h.service.ChangeRole(ctx, scope.FromContext(ctx), authz.RoleFromContext(ctx), userID, in.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.RemoveRole(r.Context(), scope.FromContext(r.Context()), authz.RoleFromContext(r.Context()), userID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
