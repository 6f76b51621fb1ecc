package diagnostics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the diagnostics JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/diagnostics.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/", h.list)
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/latest", h.latest)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.PermRunDiagnostics))
		r.Get("/draft", h.draft)
		r.Put("/draft", h.saveDraft)
		r.Post("/", h.submit)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	d, ok, err := h.service.Latest(r.Context(), scope.FromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) draft(w http.ResponseWriter, r *http.Request) {
	d, ok, err := h.service.Draft(r.Context(), scope.FromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	d, err := h.service.SaveDraft(r.Context(), scope.FromContext(r.Context()), in.Answers)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	d, err := h.service.Submit(r.Context(), scope.FromContext(r.Context()), in.Answers)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}
