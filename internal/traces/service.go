package traces

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped trace operations.
type Service struct {
	repo   Repository
	cache  *scope.Cache
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, cache *scope.Cache, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

// List returns recent traces, at most MaxLimit.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter Filter) ([]Trace, error) {
	filter = filter.Normalize()
	agent := ""
	if filter.AgentID != uuid.Nil {
		agent = filter.AgentID.String()
	}
	return scope.Query(ctx, s.cache, sc, Resource, []string{agent, string(filter.Kind), strconv.Itoa(filter.Limit)},
		func(ctx context.Context) ([]Trace, error) {
			return s.repo.List(ctx, sc.OrganizationID, filter)
		})
}

// Record stores a decision trace.
func (s *Service) Record(ctx context.Context, sc scope.Scope, in RecordInput) (Trace, error) {
	return s.insert(ctx, sc, NewTrace{
		AgentID:   in.AgentID,
		Kind:      KindDecision,
		Decision:  in.Decision,
		Rationale: in.Rationale,
		Outcome:   in.Outcome,
	})
}

// ReportIncident stores an incident trace.
func (s *Service) ReportIncident(ctx context.Context, sc scope.Scope, in IncidentInput) (Trace, error) {
	return s.insert(ctx, sc, NewTrace{
		AgentID:  in.AgentID,
		Kind:     KindIncident,
		Decision: "incident",
		Outcome:  in.Description,
		Severity: in.Severity,
	})
}

func (s *Service) insert(ctx context.Context, sc scope.Scope, nt NewTrace) (Trace, error) {
	if !sc.HasOrganization() {
		return Trace{}, scope.ErrNoOrganization
	}
	t, err := s.repo.Insert(ctx, sc.OrganizationID, sc.UserID, nt)
	if err != nil {
		return Trace{}, err
	}
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("traces cache invalidate", slog.Any("error", err))
	}
	if t.Kind == KindIncident {
		shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
			OrganizationID: sc.OrganizationID,
			ActorID:        sc.UserID,
			Action:         "incident.reported",
			Entity:         "agent",
			EntityID:       t.AgentID.String(),
			Meta:           map[string]any{"trace_id": t.ID.String(), "severity": t.Severity},
		})
	}
	return t, nil
}
