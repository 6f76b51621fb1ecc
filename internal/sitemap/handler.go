package sitemap

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// Generator builds the sitemap from the content directory.
type Generator struct {
	BaseURL    string
	ContentDir string
	Routes     []Route
	Logger     *slog.Logger
}

// Build loads the articles and assembles the sitemap.
func (g Generator) Build() (URLSet, error) {
	articles, err := LoadArticles(g.ContentDir, g.Logger)
	if err != nil {
		return URLSet{}, err
	}
	routes := g.Routes
	if routes == nil {
		routes = StaticRoutes()
	}
	return Build(g.BaseURL, routes, articles), nil
}

// WriteFile writes the sitemap to target through a temporary file.
func (g Generator) WriteFile(target string) (int, error) {
	set, err := g.Build()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("sitemap: mkdir: %w", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, set); err != nil {
		return 0, err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("sitemap: write: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return 0, fmt.Errorf("sitemap: rename: %w", err)
	}
	return len(set.URLs), nil
}

// Handler serves /sitemap.xml built on demand.
func Handler(g Generator, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := g.Build()
		if err != nil {
			logger.Error("build sitemap", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := Write(&buf, set); err != nil {
			logger.Error("encode sitemap", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = buf.WriteTo(w)
	}
}
