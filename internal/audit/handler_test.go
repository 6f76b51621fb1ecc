package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/audit"
	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/testing/testkit"
)

type fixedRepo struct {
	rows []audit.TimelineRow
}

func (f fixedRepo) TimelineWindow(ctx context.Context, arg audit.WindowParams) ([]audit.TimelineRow, error) {
	return f.rows, nil
}

func (f fixedRepo) TimelineAll(ctx context.Context, orgID uuid.UUID, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	return f.rows, nil
}

func newRouter(role authz.Role) chi.Router {
	repo := fixedRepo{rows: []audit.TimelineRow{{
		At:       time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Actor:    "claire@example.fr",
		Action:   "policy.created",
		Entity:   "policy",
		EntityID: "p-1",
		Meta:     map[string]any{"title": "Charte; éthique"},
	}}}
	h := audit.NewHandler(nil, audit.NewService(repo), testkit.Authz(role))
	r := chi.NewRouter()
	r.Route("/api/audit", h.MountRoutes)
	return r
}

func TestTimelineForAuditor(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(authz.RoleAuditor).ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/audit/?page=1", nil), testkit.Member()))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var result audit.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0].Action != "policy.created" {
		t.Fatalf("unexpected rows %+v", result.Rows)
	}
}

func TestTimelineDeniedForDataScientist(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(authz.RoleDataScientist).ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/audit/", nil), testkit.Member()))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestTimelineRejectsBadFilters(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(authz.RoleAuditor).ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/audit/?from=2026-13-01&page=0", nil), testkit.Member()))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"from":"date"`) || !strings.Contains(body, `"page":"min"`) {
		t.Fatalf("expected field errors, got %s", body)
	}
}

func TestExportCSV(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(authz.RoleComplianceOfficer).ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/audit/export.csv", nil), testkit.Member()))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := strings.TrimPrefix(rr.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "date;acteur;action;entite;identifiant;details" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2026-03-02T09:30:00Z;claire@example.fr;policy.created;policy;p-1;") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestExportRequiresExportReports(t *testing.T) {
	rr := httptest.NewRecorder()
	newRouter(authz.RoleRiskManager).ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/audit/export.csv", nil), testkit.Member()))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
