// Package marketing serves the public presentation pages.
package marketing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
	"github.com/gouvernance-ai/gouvernance/internal/view"
)

type page struct {
	template    string
	description string
}

var pages = map[string]page{
	"/": {
		template:    "pages/home.html",
		description: "Plateforme de gouvernance et de conformité des systèmes d'intelligence artificielle.",
	},
	"/services": {
		template:    "pages/services.html",
		description: "Inventaire, évaluation des risques, politiques et traçabilité de vos systèmes d'IA.",
	},
	"/a-propos": {
		template:    "pages/about.html",
		description: "Qui sommes-nous : une équipe dédiée à une IA digne de confiance.",
	},
	"/contact": {
		template:    "pages/contact.html",
		description: "Contactez l'équipe gouvernance.ai.",
	},
	"/mentions-legales": {
		template: "pages/legal.html",
	},
}

// Handler renders the static pages listed in the sitemap.
type Handler struct {
	pages *view.Pages
}

// NewHandler builds the marketing handler.
func NewHandler(p *view.Pages) *Handler {
	return &Handler{pages: p}
}

// MountRoutes registers one GET route per static page with a template.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, route := range sitemap.StaticRoutes() {
		p, ok := pages[route.Path]
		if !ok {
			continue
		}
		title := route.Title
		if route.Path == "/" {
			title = ""
		}
		r.Get(route.Path, h.render(p, title))
	}
}

func (h *Handler) render(p page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.pages.Render(w, r, view.Page{Name: p.template, Title: title, Description: p.description})
	}
}
