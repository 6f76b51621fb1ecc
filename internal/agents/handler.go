package agents

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the agents JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/agents.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/", h.list)
	r.With(h.authz.Require(authz.PermViewAISystems)).Get("/{id}", h.get)
	r.With(h.authz.Require(authz.PermManageAISystems)).Post("/", h.register)
	r.With(h.authz.Require(authz.PermAssessRisks)).Put("/{id}/risk", h.assess)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()), ListFilter{
		Status:    Status(q.Get("status")),
		RiskLevel: RiskLevel(q.Get("risk_level")),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	agent, ok, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	agent, err := h.service.Register(r.Context(), scope.FromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, agent)
}

func (h *Handler) assess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var in RiskAssessment
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	agent, err := h.service.UpdateRiskScore(r.Context(), scope.FromContext(r.Context()), id, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agent)
}
