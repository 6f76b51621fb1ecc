package view

import (
	"log/slog"
	"net/http"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Page describes one full-page render.
type Page struct {
	Status      int
	Name        string
	Title       string
	Description string
	Data        any
}

// Pages renders full pages with the layout values taken from the request.
type Pages struct {
	Engine *Engine
	CSRF   *shared.CSRFManager
	Logger *slog.Logger
}

// TemplateData assembles the layout values for r.
func (p *Pages) TemplateData(r *http.Request, page Page) TemplateData {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	data := TemplateData{
		Title:         page.Title,
		Description:   page.Description,
		CurrentPath:   r.URL.Path,
		Authenticated: scope.FromContext(ctx).Authenticated(),
		Role:          authz.RoleFromContext(ctx),
		Data:          page.Data,
	}
	if p.CSRF != nil && sess != nil {
		token, err := p.CSRF.EnsureToken(ctx, sess)
		if err != nil {
			p.logger().Warn("csrf token", slog.Any("error", err))
		}
		data.CSRFToken = token
	}
	if sess != nil {
		data.Flash = sess.PopFlash()
	}
	return data
}

// Render writes page, falling back to a plain 500 when the template fails.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, page Page) {
	if page.Status == 0 {
		page.Status = http.StatusOK
	}
	if err := p.Engine.RenderStatus(w, page.Status, page.Name, p.TemplateData(r, page)); err != nil {
		p.logger().Error("render page", slog.String("template", page.Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, Page{Status: http.StatusNotFound, Name: "pages/not_found.html", Title: "Page introuvable"})
}

func (p *Pages) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
