package audit

import (
	"context"
	"fmt"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// Service serves the organization's audit trail.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of the audit trail. It reads one row past the
// page to know whether a next page exists.
func (s *Service) Timeline(ctx context.Context, sc scope.Scope, filters TimelineFilters) (Result, error) {
	filters = filters.normalize()
	paging := PagingInfo{Page: filters.Page, PageSize: filters.PageSize}
	if !sc.HasOrganization() {
		return Result{Rows: []TimelineRow{}, Paging: paging}, nil
	}
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	rows, err := s.repo.TimelineWindow(ctx, WindowParams{
		OrganizationID: sc.OrganizationID,
		Filters:        filters,
		Offset:         (filters.Page - 1) * filters.PageSize,
		Limit:          filters.PageSize + 1,
	})
	if err != nil {
		return Result{}, err
	}
	paging.HasNext = len(rows) > filters.PageSize
	if paging.HasNext {
		rows = rows[:filters.PageSize]
		paging.NextPage = filters.Page + 1
	}
	if filters.Page > 1 {
		paging.PrevPage = filters.Page - 1
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the whole filtered trail without paging.
func (s *Service) Export(ctx context.Context, sc scope.Scope, filters TimelineFilters) ([]TimelineRow, error) {
	if !sc.HasOrganization() {
		return []TimelineRow{}, nil
	}
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.TimelineAll(ctx, sc.OrganizationID, filters)
}
