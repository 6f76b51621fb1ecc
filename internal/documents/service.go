package documents

import (
	"context"
	"log/slog"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped document operations.
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

// List returns documents, optionally of one kind.
func (s *Service) List(ctx context.Context, sc scope.Scope, kind Kind) ([]Document, error) {
	return scope.Query(ctx, s.cache, sc, Resource, []string{string(kind)},
		func(ctx context.Context) ([]Document, error) {
			return s.repo.List(ctx, sc.OrganizationID, kind)
		})
}

// Create indexes a new document.
func (s *Service) Create(ctx context.Context, sc scope.Scope, in CreateInput) (Document, error) {
	if !sc.HasOrganization() {
		return Document{}, scope.ErrNoOrganization
	}
	d, err := s.repo.Create(ctx, sc.OrganizationID, sc.UserID, in)
	if err != nil {
		return Document{}, err
	}
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("documents cache invalidate", slog.Any("error", err))
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         "document.created",
		Entity:         "document",
		EntityID:       d.ID.String(),
		Meta:           map[string]any{"title": d.Title, "kind": d.Kind},
	})
	return d, nil
}
