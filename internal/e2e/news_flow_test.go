package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/gouvernance-ai/gouvernance/internal/cms"
	jobmetrics "github.com/gouvernance-ai/gouvernance/internal/jobs"
	"github.com/gouvernance-ai/gouvernance/internal/view"
	"github.com/gouvernance-ai/gouvernance/jobs"
)

const listing = `{
  "data": [
    {"id": 7, "title": "Registre des systemes IA", "slug": "registre-ia", "excerpt": "Inventaire", "content": "## Pourquoi\n\nUn **registre** tenu a jour.", "publishedAt": "2026-04-02T09:00:00Z"}
  ],
  "meta": {"pagination": {"page": 1, "pageSize": 5, "pageCount": 1, "total": 1}}
}`

func fakeCMS(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/articles" {
			http.NotFound(w, r)
			return
		}
		if slug := r.URL.Query().Get("filters[slug][$eq]"); slug != "" && slug != "registre-ia" {
			_, _ = w.Write([]byte(`{"data": [], "meta": {"pagination": {"page": 1, "pageSize": 1, "pageCount": 0, "total": 0}}}`))
			return
		}
		_, _ = w.Write([]byte(listing))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewsWarmupThenServe(t *testing.T) {
	var hits atomic.Int32
	srv := fakeCMS(t, &hits)
	client := cms.NewClient(cms.Config{BaseURL: srv.URL, CacheTTL: time.Minute}, nil, nil)

	reg := prometheus.NewRegistry()
	warm := &jobs.CMSWarmupJob{CMS: client, PageSize: 5, Metrics: jobmetrics.NewMetrics(reg)}
	task, err := jobs.NewCMSWarmupTask(2)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := warm.Handle(context.Background(), task); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single upstream call for one page, got %d", hits.Load())
	}

	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	router := chi.NewRouter()
	router.Route("/actualites", cms.NewHandler(client, &view.Pages{Engine: engine}, 5, nil).MountRoutes)

	list := get(router, "/actualites")
	if list.Code != http.StatusOK {
		t.Fatalf("list status %d", list.Code)
	}
	if !strings.Contains(list.Body.String(), "Registre des systemes IA") {
		t.Fatalf("list does not show the article")
	}
	if hits.Load() != 1 {
		t.Fatalf("listing should be served from the warmed cache, upstream hits=%d", hits.Load())
	}

	article := get(router, "/actualites/registre-ia")
	if article.Code != http.StatusOK {
		t.Fatalf("article status %d", article.Code)
	}
	if !strings.Contains(article.Body.String(), "<strong>registre</strong>") {
		t.Fatalf("article body not rendered from markdown")
	}

	if missing := get(router, "/actualites/inconnu"); missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown article, got %d", missing.Code)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if !assertCounter(families, "gouvernance_jobs_total", map[string]string{"job": jobs.TaskCMSWarmup, "status": "success"}, 1) {
		t.Fatalf("expected gouvernance_jobs_total increment for cms warmup")
	}
}

func TestNewsUnavailableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client := cms.NewClient(cms.Config{BaseURL: srv.URL, CacheTTL: time.Minute}, nil, nil)

	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	router := chi.NewRouter()
	router.Route("/actualites", cms.NewHandler(client, &view.Pages{Engine: engine}, 5, nil).MountRoutes)

	rr := get(router, "/actualites")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "indisponibles") {
		t.Fatalf("expected unavailable notice")
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func assertCounter(families []*dto.MetricFamily, name string, labels map[string]string, expected float64) bool {
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matchLabels(metric.GetLabel(), labels) && metric.GetCounter().GetValue() == expected {
				return true
			}
		}
	}
	return false
}

func matchLabels(pairs []*dto.LabelPair, expected map[string]string) bool {
	seen := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		seen[pair.GetName()] = pair.GetValue()
	}
	for k, v := range expected {
		if seen[k] != v {
			return false
		}
	}
	return true
}
