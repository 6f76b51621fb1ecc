package documents

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the documents JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/documents.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/", h.list)
	r.With(h.authz.Require(authz.PermManageDocuments)).Post("/", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()), Kind(r.URL.Query().Get("kind")))
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
	d, err := h.service.Create(r.Context(), scope.FromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}
