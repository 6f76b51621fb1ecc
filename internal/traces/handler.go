package traces

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Handler exposes the traces JSON API.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers routes under /api/traces.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.Require(authz.PermViewTraces)).Get("/", h.list)
	r.With(h.authz.Require(authz.PermManageAISystems)).Post("/", h.record)
	r.With(h.authz.Require(authz.PermReportIncident)).Post("/incidents", h.reportIncident)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Kind: Kind(q.Get("kind"))}
	if raw := q.Get("agent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.ValidationProblem(w, map[string]string{"agent_id": "uuid"})
			return
		}
		filter.AgentID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.ValidationProblem(w, map[string]string{"limit": "numeric"})
			return
		}
		filter.Limit = n
	}
	list, err := h.service.List(r.Context(), scope.FromContext(r.Context()), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var in RecordInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	t, err := h.service.Record(r.Context(), scope.FromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) reportIncident(w http.ResponseWriter, r *http.Request) {
	var in IncidentInput
	if fields, err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondDecodeError(w, fields, err)
		return
	}
	t, err := h.service.ReportIncident(r.Context(), scope.FromContext(r.Context()), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}
