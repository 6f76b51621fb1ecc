package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// Handler exposes the audit trail API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, authz: mw}
}

// MountRoutes registers routes under /api/audit.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "trop d'exports, réessayez dans une minute")
		}),
	)
	r.With(h.authz.Require(authz.PermViewAuditTrail)).Get("/", h.handleTimeline)
	r.With(h.authz.Require(authz.PermExportReports), limiter).Get("/export.csv", h.handleExport)
}

func rateLimitKey(r *http.Request) (string, error) {
	if sc := scope.FromContext(r.Context()); sc.Authenticated() {
		return "user:" + sc.UserID.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, fields := parseFilters(r)
	if len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	result, err := h.service.Timeline(r.Context(), scope.FromContext(r.Context()), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, fields := parseFilters(r)
	if len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	rows, err := h.service.Export(r.Context(), scope.FromContext(r.Context()), filters)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	csvBytes, err := WriteCSV(rows)
	if err != nil {
		h.logger.Error("encode csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="journal-audit.csv"`)
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request) (TimelineFilters, map[string]string) {
	q := r.URL.Query()
	fields := map[string]string{}
	filters := TimelineFilters{Entity: q.Get("entity"), Action: q.Get("action")}
	parseDate := func(name string) time.Time {
		raw := q.Get(name)
		if raw == "" {
			return time.Time{}
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fields[name] = "date"
		}
		return t
	}
	filters.From = parseDate("from")
	filters.To = parseDate("to")
	if !filters.To.IsZero() {
		filters.To = filters.To.AddDate(0, 0, 1)
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && !filters.From.Before(filters.To) {
		fields["to"] = "gtfield"
	}
	if raw := q.Get("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields["actor_id"] = "uuid"
		}
		filters.ActorID = id
	}
	for name, dst := range map[string]*int{"page": &filters.Page, "page_size": &filters.PageSize} {
		if raw := q.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				fields[name] = "min"
				continue
			}
			*dst = n
		}
	}
	return filters, fields
}
