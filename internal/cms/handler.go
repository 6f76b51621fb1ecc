package cms

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/view"
)

// Source is the read side of the CMS used by the news pages.
type Source interface {
	ListArticles(ctx context.Context, p ListParams) (ArticlePage, error)
	ArticleBySlug(ctx context.Context, slug string) (Article, error)
}

// Handler serves the public news pages.
type Handler struct {
	source   Source
	pages    *view.Pages
	pageSize int
	logger   *slog.Logger
}

// NewHandler builds the news handler.
func NewHandler(source Source, pages *view.Pages, pageSize int, logger *slog.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = 9
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{source: source, pages: pages, pageSize: pageSize, logger: logger}
}

// MountRoutes registers /actualites routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{slug}", h.article)
}

type listData struct {
	Articles    []Article
	Pagination  shared.Pagination
	PrevPage    int
	NextPage    int
	Unavailable bool
}

type articleData struct {
	Article Article
	Body    template.HTML
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r.URL.Query().Get("page"))
	result, err := h.source.ListArticles(r.Context(), ListParams{Page: page, PageSize: h.pageSize})
	data := listData{}
	status := http.StatusOK
	if err != nil {
		h.logger.Error("cms list articles", slog.Int("page", page), slog.Any("error", err))
		data.Unavailable = true
		status = http.StatusServiceUnavailable
	} else {
		data.Articles = result.Articles
		data.Pagination = result.Pagination
		data.PrevPage = result.Pagination.Page - 1
		data.NextPage = result.Pagination.Page + 1
	}
	h.pages.Render(w, r, view.Page{
		Status:      status,
		Name:        "pages/news_list.html",
		Title:       "Actualités",
		Description: "Les actualités de la gouvernance de l'intelligence artificielle.",
		Data:        data,
	})
}

func (h *Handler) article(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := h.source.ArticleBySlug(r.Context(), slug)
	if errors.Is(err, ErrArticleNotFound) {
		h.pages.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("cms article", slog.String("slug", slug), slog.Any("error", err))
		h.pages.Render(w, r, view.Page{
			Status: http.StatusServiceUnavailable,
			Name:   "pages/news_list.html",
			Title:  "Actualités",
			Data:   listData{Unavailable: true},
		})
		return
	}
	body, err := Render(article.Content)
	if err != nil {
		h.logger.Error("cms render markdown", slog.String("slug", slug), slog.Any("error", err))
		body = template.HTML(template.HTMLEscapeString(article.Content))
	}
	h.pages.Render(w, r, view.Page{
		Name:        "pages/news_article.html",
		Title:       article.Title,
		Description: article.Excerpt,
		Data:        articleData{Article: article, Body: body},
	})
}
