package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gouvernance-ai/gouvernance/internal/platform/httpx"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped diagnostic operations.
type Service struct {
	repo   Repository
	drafts *DraftStore
	cache  *scope.Cache
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, drafts *DraftStore, cache *scope.Cache, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, drafts: drafts, cache: cache, audit: audit, logger: logger}
}

// List returns the organization's diagnostics, newest first.
func (s *Service) List(ctx context.Context, sc scope.Scope) ([]Diagnostic, error) {
	return scope.Query(ctx, s.cache, sc, Resource, []string{"list"},
		func(ctx context.Context) ([]Diagnostic, error) {
			return s.repo.List(ctx, sc.OrganizationID)
		})
}

// Latest returns the most recent diagnostic; ok is false when there is none.
func (s *Service) Latest(ctx context.Context, sc scope.Scope) (Diagnostic, bool, error) {
	latest, _, err := scope.QueryOne(ctx, s.cache, sc, Resource, []string{"latest"},
		func(ctx context.Context) (*Diagnostic, error) {
			d, err := s.repo.Latest(ctx, sc.OrganizationID)
			if errors.Is(err, httpx.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return &d, nil
		})
	if err != nil || latest == nil {
		return Diagnostic{}, false, err
	}
	return *latest, true, nil
}

// Draft returns the caller's unfinished diagnostic, if any.
func (s *Service) Draft(ctx context.Context, sc scope.Scope) (Draft, bool, error) {
	return s.drafts.Load(ctx, sc)
}

// SaveDraft stores partial answers without validating completeness.
func (s *Service) SaveDraft(ctx context.Context, sc scope.Scope, answers Answers) (Draft, error) {
	for dim, v := range answers {
		if !knownDimension(dim) || v < 0 || v > MaxAnswer {
			return Draft{}, fmt.Errorf("%w: dimension %q", httpx.ErrValidation, dim)
		}
	}
	return s.drafts.Save(ctx, sc, answers)
}

// Submit scores and stores a complete diagnostic, then clears the draft.
func (s *Service) Submit(ctx context.Context, sc scope.Scope, answers Answers) (Diagnostic, error) {
	if !sc.HasOrganization() {
		return Diagnostic{}, scope.ErrNoOrganization
	}
	if err := answers.Validate(); err != nil {
		return Diagnostic{}, err
	}
	score := math.Round(answers.Score()*10) / 10
	d, err := s.repo.Insert(ctx, Diagnostic{
		OrganizationID: sc.OrganizationID,
		Answers:        answers,
		Score:          score,
		Level:          LevelFor(score),
		SubmittedBy:    sc.UserID,
	})
	if err != nil {
		return Diagnostic{}, err
	}
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("diagnostics cache invalidate", slog.Any("error", err))
	}
	if err := s.drafts.Discard(ctx, sc); err != nil {
		s.logger.Warn("diagnostics discard draft", slog.Any("error", err))
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         "diagnostic.submitted",
		Entity:         "diagnostic",
		EntityID:       d.ID.String(),
		Meta:           map[string]any{"score": d.Score, "level": d.Level},
	})
	return d, nil
}
