package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

type stubTimelineRepo struct {
	windowRows     []TimelineRow
	allRows        []TimelineRow
	lastWindowCall WindowParams
	lastAllFilters TimelineFilters
	calls          int
}

func (s *stubTimelineRepo) TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error) {
	s.calls++
	s.lastWindowCall = arg
	return s.windowRows, nil
}

func (s *stubTimelineRepo) TimelineAll(ctx context.Context, orgID uuid.UUID, filters TimelineFilters) ([]TimelineRow, error) {
	s.calls++
	s.lastAllFilters = filters
	return s.allRows, nil
}

func member() scope.Scope {
	return scope.Scope{UserID: uuid.New(), OrganizationID: uuid.New()}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{
		windowRows: []TimelineRow{
			mockRow("2026-03-10T10:00:00Z", "agent.registered", "agent"),
			mockRow("2026-03-09T09:00:00Z", "policy.created", "policy"),
			mockRow("2026-03-08T08:00:00Z", "member.role_assigned", "member"),
		},
	}
	sc := member()
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), sc, TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected next page 2, got %+v", result.Paging)
	}
	if repo.lastWindowCall.Limit != 3 {
		t.Fatalf("expected limit 3, got %d", repo.lastWindowCall.Limit)
	}
	if repo.lastWindowCall.OrganizationID != sc.OrganizationID {
		t.Fatalf("expected organization scope to be forwarded")
	}
}

func TestServiceTimelineSecondPage(t *testing.T) {
	repo := &stubTimelineRepo{windowRows: []TimelineRow{mockRow("2026-03-08T08:00:00Z", "agent.registered", "agent")}}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), member(), TimelineFilters{Page: 2, PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastWindowCall.Offset != MaxPageSize {
		t.Fatalf("expected offset %d, got %d", MaxPageSize, repo.lastWindowCall.Offset)
	}
	if result.Paging.HasNext || result.Paging.PrevPage != 1 {
		t.Fatalf("unexpected paging %+v", result.Paging)
	}
}

func TestServiceWithoutOrganization(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), scope.Scope{UserID: uuid.New()}, TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	rows, err := svc.Export(context.Background(), scope.Scope{}, TimelineFilters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(result.Rows) != 0 || len(rows) != 0 || repo.calls != 0 {
		t.Fatalf("expected empty results without backend calls")
	}
}

func TestServiceExportReturnsAllRows(t *testing.T) {
	repo := &stubTimelineRepo{
		allRows: []TimelineRow{
			mockRow("2026-03-10T10:00:00Z", "agent.registered", "agent"),
			mockRow("2026-03-09T09:00:00Z", "document.created", "document"),
		},
	}
	svc := NewService(repo)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := svc.Export(context.Background(), member(), TimelineFilters{From: from})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !repo.lastAllFilters.From.Equal(from) {
		t.Fatalf("expected from filter to be forwarded")
	}
}

func mockRow(ts, action, entity string) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{
		At:       at,
		ActorID:  uuid.New(),
		Actor:    "claire@example.fr",
		Action:   action,
		Entity:   entity,
		EntityID: uuid.NewString(),
	}
}
