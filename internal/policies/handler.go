package policies

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the policies JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/policies. Every role of the
// organization may read policies.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/", h.list)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermManagePolicies))
		r.Post("/", h.create)
		r.Put("/{id}/status", h.updateStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	p, err := h.service.Create(r.Context(), scope.FromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var in StatusInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	p, err := h.service.UpdateStatus(r.Context(), scope.FromContext(r.Context()), id, in.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
