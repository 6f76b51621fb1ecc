package agents_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/agents"
	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	"github.com/gouvernance-ai/gouvernance/internal/testing/testkit"
)

type stubRepo struct {
	agents    []agents.Agent
	listCalls int
	err       error
}

func (s *stubRepo) List(ctx context.Context, orgID uuid.UUID, filter agents.ListFilter) ([]agents.Agent, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []agents.Agent
	for _, a := range s.agents {
		if a.OrganizationID != orgID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.RiskLevel != "" && a.RiskLevel != filter.RiskLevel {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, orgID, id uuid.UUID) (agents.Agent, error) {
	for _, a := range s.agents {
		if a.OrganizationID == orgID && a.ID == id {
			return a, nil
		}
	}
	return agents.Agent{}, httpx.ErrNotFound
}

func (s *stubRepo) Register(ctx context.Context, orgID, actorID uuid.UUID, in agents.RegisterInput) (agents.Agent, error) {
	a := agents.Agent{
		ID: uuid.New(), OrganizationID: orgID, Name: in.Name, Provider: in.Provider,
		RiskLevel: in.RiskLevel, Status: agents.StatusDraft, CreatedBy: actorID, CreatedAt: time.Now().UTC(),
	}
	s.agents = append(s.agents, a)
	return a, nil
}

func (s *stubRepo) UpdateRiskScore(ctx context.Context, orgID, id uuid.UUID, score int) (agents.Agent, error) {
	for i := range s.agents {
		if s.agents[i].OrganizationID == orgID && s.agents[i].ID == id {
			s.agents[i].RiskScore = score
			return s.agents[i], nil
		}
	}
	return agents.Agent{}, httpx.ErrNotFound
}

type recordingAudit struct {
	entries []shared.AuditEntry
}

func (r *recordingAudit) Record(ctx context.Context, entry shared.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func TestListWithoutOrganizationSkipsBackend(t *testing.T) {
	repo := &stubRepo{}
	svc := agents.NewService(repo, testkit.Cache(t), nil, nil)

	for _, sc := range []scope.Scope{{}, {UserID: uuid.New()}} {
		list, err := svc.List(context.Background(), sc, agents.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	}
	_, ok, err := svc.Get(context.Background(), scope.Scope{}, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, repo.listCalls)

	_, err = svc.Register(context.Background(), scope.Scope{UserID: uuid.New()}, agents.RegisterInput{Name: "x"})
	assert.ErrorIs(t, err, scope.ErrNoOrganization)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestListIsScopedAndFiltered(t *testing.T) {
	sc := testkit.Member()
	repo := &stubRepo{agents: []agents.Agent{
		{ID: uuid.New(), OrganizationID: sc.OrganizationID, Name: "Tri CV", RiskLevel: agents.RiskHigh, Status: agents.StatusActive},
		{ID: uuid.New(), OrganizationID: sc.OrganizationID, Name: "Chatbot", RiskLevel: agents.RiskLimited, Status: agents.StatusActive},
		{ID: uuid.New(), OrganizationID: uuid.New(), Name: "Autre", RiskLevel: agents.RiskHigh, Status: agents.StatusActive},
	}}
	svc := agents.NewService(repo, testkit.Cache(t), nil, nil)

	all, err := svc.List(context.Background(), sc, agents.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	high, err := svc.List(context.Background(), sc, agents.ListFilter{RiskLevel: agents.RiskHigh})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "Tri CV", high[0].Name)
}

func TestRegisterInvalidatesCachedList(t *testing.T) {
	sc := testkit.Member()
	repo := &stubRepo{}
	audit := &recordingAudit{}
	svc := agents.NewService(repo, testkit.Cache(t), audit, nil)
	ctx := context.Background()

	list, err := svc.List(ctx, sc, agents.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.List(ctx, sc, agents.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	created, err := svc.Register(ctx, sc, agents.RegisterInput{Name: "Scoring crédit", Provider: "Interne", RiskLevel: agents.RiskHigh})
	require.NoError(t, err)

	list, err = svc.List(ctx, sc, agents.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "agent.registered", audit.entries[0].Action)
	assert.Equal(t, sc.UserID, audit.entries[0].ActorID)
}

func TestUpdateRiskScore(t *testing.T) {
	sc := testkit.Member()
	id := uuid.New()
	repo := &stubRepo{agents: []agents.Agent{{ID: id, OrganizationID: sc.OrganizationID, Name: "Tri CV", RiskScore: 10}}}
	svc := agents.NewService(repo, testkit.Cache(t), nil, nil)
	ctx := context.Background()

	before, ok, err := svc.Get(ctx, sc, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, before.RiskScore)

	_, err = svc.UpdateRiskScore(ctx, sc, id, agents.RiskAssessment{Score: 82})
	require.NoError(t, err)

	after, _, err := svc.Get(ctx, sc, id)
	require.NoError(t, err)
	assert.Equal(t, 82, after.RiskScore)

	_, err = svc.UpdateRiskScore(ctx, sc, uuid.New(), agents.RiskAssessment{Score: 5})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestBackendFailureSurfaces(t *testing.T) {
	boom := errors.New("backend indisponible")
	svc := agents.NewService(&stubRepo{err: boom}, nil, nil, nil)
	_, err := svc.List(context.Background(), testkit.Member(), agents.ListFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestAverageRisk(t *testing.T) {
	assert.Zero(t, agents.AverageRisk(nil))
	assert.InDelta(t, 50.0, agents.AverageRisk([]agents.Agent{{RiskScore: 20}, {RiskScore: 80}}), 0.001)
}
