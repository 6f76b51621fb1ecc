package traces_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/testing/testkit"
	"github.com/gouvernance-ai/gouvernance/internal/traces"
)

type stubRepo struct {
	traces     []traces.Trace
	lastFilter traces.Filter
	listCalls  int
}

func (s *stubRepo) List(ctx context.Context, orgID uuid.UUID, filter traces.Filter) ([]traces.Trace, error) {
	s.listCalls++
	s.lastFilter = filter
	var out []traces.Trace
	for _, t := range s.traces {
		if t.OrganizationID == orgID && (filter.AgentID == uuid.Nil || t.AgentID == filter.AgentID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubRepo) Insert(ctx context.Context, orgID, actorID uuid.UUID, nt traces.NewTrace) (traces.Trace, error) {
	t := traces.Trace{
		ID: uuid.New(), OrganizationID: orgID, AgentID: nt.AgentID, Kind: nt.Kind,
		Decision: nt.Decision, Outcome: nt.Outcome, Severity: nt.Severity, RecordedBy: actorID, CreatedAt: time.Now().UTC(),
	}
	s.traces = append(s.traces, t)
	return t, nil
}

type recordingAudit struct{ entries []shared.AuditEntry }

func (r *recordingAudit) Record(ctx context.Context, e shared.AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestListClampsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc := traces.NewService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), testkit.Member(), traces.Filter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, traces.MaxLimit, repo.lastFilter.Limit)

	_, err = svc.List(context.Background(), testkit.Member(), traces.Filter{})
	require.NoError(t, err)
	assert.Equal(t, traces.DefaultLimit, repo.lastFilter.Limit)
}

func TestListWithoutOrganization(t *testing.T) {
	repo := &stubRepo{}
	list, err := traces.NewService(repo, nil, nil, nil).List(context.Background(), scope.Scope{}, traces.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, repo.listCalls)
}

func TestReportIncidentRefreshesListAndAudits(t *testing.T) {
	sc := testkit.Member()
	agentID := uuid.New()
	repo := &stubRepo{}
	audit := &recordingAudit{}
	svc := traces.NewService(repo, testkit.Cache(t), audit, nil)
	ctx := context.Background()

	list, err := svc.List(ctx, sc, traces.Filter{AgentID: agentID})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Record(ctx, sc, traces.RecordInput{AgentID: agentID, Decision: "refus de crédit"})
	require.NoError(t, err)
	incident, err := svc.ReportIncident(ctx, sc, traces.IncidentInput{AgentID: agentID, Description: "biais détecté", Severity: "elevee"})
	require.NoError(t, err)
	assert.Equal(t, traces.KindIncident, incident.Kind)

	list, err = svc.List(ctx, sc, traces.Filter{AgentID: agentID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "incident.reported", audit.entries[0].Action)
}

func TestIncidentReportOpenToMembers(t *testing.T) {
	h := traces.NewHandler(traces.NewService(&stubRepo{}, nil, nil, nil), testkit.Authz(authz.RoleMember))
	r := chi.NewRouter()
	r.Route("/api/traces", h.MountRoutes)
	sc := testkit.Member()

	body := `{"agent_id":"` + uuid.NewString() + `","description":"sortie incohérente","severity":"moyenne"}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodPost, "/api/traces/incidents", strings.NewReader(body)), sc))
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, testkit.WithScope(httptest.NewRequest(http.MethodGet, "/api/traces/", nil), sc))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
