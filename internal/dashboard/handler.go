package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/view"
)

// Handler serves /tableau-de-bord.
type Handler struct {
	loader Loader
	pages  *view.Pages
	logger *slog.Logger
}

// NewHandler builds the dashboard handler.
func NewHandler(loader Loader, pages *view.Pages, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{loader: loader, pages: pages, logger: logger}
}

// ServeHTTP renders the dashboard of the current member.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sc := scope.FromContext(r.Context())
	summary, err := h.loader.Load(r.Context(), sc)
	if err != nil {
		h.logger.Error("load dashboard",
			slog.String("organization_id", sc.OrganizationID.String()),
			slog.Any("error", err))
		h.pages.Render(w, r, view.Page{
			Status: http.StatusInternalServerError,
			Name:   "pages/error.html",
			Title:  "Erreur",
		})
		return
	}
	h.pages.Render(w, r, view.Page{Name: "pages/dashboard.html", Title: "Tableau de bord", Data: summary})
}
