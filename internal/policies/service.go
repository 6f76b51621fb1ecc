package policies

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped policy operations.
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

// List returns the organization's policies, optionally filtered by status.
func (s *Service) List(ctx context.Context, sc scope.Scope, status Status) ([]Policy, error) {
	return scope.Query(ctx, s.cache, sc, Resource, []string{string(status)},
		func(ctx context.Context) ([]Policy, error) {
			return s.repo.List(ctx, sc.OrganizationID, status)
		})
}

// Create adds a draft policy.
func (s *Service) Create(ctx context.Context, sc scope.Scope, in CreateInput) (Policy, error) {
	if !sc.HasOrganization() {
		return Policy{}, scope.ErrNoOrganization
	}
	p, err := s.repo.Create(ctx, sc.OrganizationID, sc.UserID, in)
	if err != nil {
		return Policy{}, err
	}
	s.changed(ctx, sc, "policy.created", p)
	return p, nil
}

// UpdateStatus moves a policy to status.
func (s *Service) UpdateStatus(ctx context.Context, sc scope.Scope, id uuid.UUID, status Status) (Policy, error) {
	if !sc.HasOrganization() {
		return Policy{}, scope.ErrNoOrganization
	}
	p, err := s.repo.UpdateStatus(ctx, sc.OrganizationID, id, status)
	if err != nil {
		return Policy{}, err
	}
	s.changed(ctx, sc, "policy.status_changed", p)
	return p, nil
}

func (s *Service) changed(ctx context.Context, sc scope.Scope, action string, p Policy) {
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("policies cache invalidate", slog.Any("error", err))
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         action,
		Entity:         "policy",
		EntityID:       p.ID.String(),
		Meta:           map[string]any{"title": p.Title, "status": p.Status, "version": p.Version},
	})
}
