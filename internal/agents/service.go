package agents

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped agent operations.
type Service struct {
	repo   Repository
	cache  *scope.Cache
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service. cache and audit may be nil.
func NewService(repo Repository, cache *scope.Cache, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

// List returns the agents of the scope's organization.
func (s *Service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]Agent, error) {
	return scope.Query(ctx, s.cache, sc, Resource, []string{"list", string(filter.Status), string(filter.RiskLevel)},
		func(ctx context.Context) ([]Agent, error) {
			return s.repo.List(ctx, sc.OrganizationID, filter)
		})
}

// Get returns one agent. ok is false without organization.
func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (Agent, bool, error) {
	return scope.QueryOne(ctx, s.cache, sc, Resource, []string{"id", id.String()},
		func(ctx context.Context) (Agent, error) {
			return s.repo.Get(ctx, sc.OrganizationID, id)
		})
}

// Register creates an agent through the server-side registration procedure.
func (s *Service) Register(ctx context.Context, sc scope.Scope, in RegisterInput) (Agent, error) {
	if !sc.HasOrganization() {
		return Agent{}, scope.ErrNoOrganization
	}
	agent, err := s.repo.Register(ctx, sc.OrganizationID, sc.UserID, in)
	if err != nil {
		return Agent{}, err
	}
	s.invalidate(ctx, sc)
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         "agent.registered",
		Entity:         "agent",
		EntityID:       agent.ID.String(),
		Meta:           map[string]any{"name": agent.Name, "risk_level": agent.RiskLevel},
	})
	return agent, nil
}

// UpdateRiskScore records a risk assessment for an agent.
func (s *Service) UpdateRiskScore(ctx context.Context, sc scope.Scope, id uuid.UUID, in RiskAssessment) (Agent, error) {
	if !sc.HasOrganization() {
		return Agent{}, scope.ErrNoOrganization
	}
	agent, err := s.repo.UpdateRiskScore(ctx, sc.OrganizationID, id, in.Score)
	if err != nil {
		return Agent{}, err
	}
	s.invalidate(ctx, sc)
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         "agent.risk_assessed",
		Entity:         "agent",
		EntityID:       agent.ID.String(),
		Meta:           map[string]any{"score": strconv.Itoa(in.Score), "note": in.Note},
	})
	return agent, nil
}

func (s *Service) invalidate(ctx context.Context, sc scope.Scope) {
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("agents cache invalidate", slog.Any("error", err))
	}
}
