package members

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gouvernance-ai/gouvernance/internal/authz"
	"github.com/gouvernance-ai/gouvernance/internal/scope"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service exposes organization-scoped membership operations.
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

// List returns the members of the organization.
func (s *Service) List(ctx context.Context, sc scope.Scope) ([]Member, error) {
	return scope.Query(ctx, s.cache, sc, Resource, nil,
		func(ctx context.Context) ([]Member, error) {
			return s.repo.List(ctx, sc.OrganizationID)
		})
}

// AssignRole gives userID a role in the organization. actor is the role of
// the caller.
func (s *Service) AssignRole(ctx context.Context, sc scope.Scope, actor authz.Role, userID uuid.UUID, role authz.Role) error {
	if err := s.check(sc, actor, userID, role); err != nil {
		return err
	}
	if err := s.repo.Assign(ctx, sc.OrganizationID, userID, role); err != nil {
		return err
	}
	s.changed(ctx, sc, "member.role_assigned", userID, role)
	return nil
}

// ChangeRole replaces the role of an existing member.
func (s *Service) ChangeRole(ctx context.Context, sc scope.Scope, actor authz.Role, userID uuid.UUID, role authz.Role) error {
	if err := s.check(sc, actor, userID, role); err != nil {
		return err
	}
	if err := s.guardTarget(ctx, sc, actor, userID); err != nil {
		return err
	}
	if err := s.repo.Change(ctx, sc.OrganizationID, userID, role); err != nil {
		return err
	}
	s.changed(ctx, sc, "member.role_changed", userID, role)
	return nil
}

// RemoveRole revokes the member's role, leaving them without permissions.
func (s *Service) RemoveRole(ctx context.Context, sc scope.Scope, actor authz.Role, userID uuid.UUID) error {
	if !sc.HasOrganization() {
		return scope.ErrNoOrganization
	}
	if userID == sc.UserID {
		return ErrSelfChange
	}
	if err := s.guardTarget(ctx, sc, actor, userID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, sc.OrganizationID, userID); err != nil {
		return err
	}
	s.changed(ctx, sc, "member.role_removed", userID, authz.RoleNone)
	return nil
}

func (s *Service) check(sc scope.Scope, actor authz.Role, userID uuid.UUID, role authz.Role) error {
	switch {
	case !sc.HasOrganization():
		return scope.ErrNoOrganization
	case role.IsNone():
		return ErrNoRole
	case userID == sc.UserID:
		return ErrSelfChange
	case role == authz.RoleSuperAdmin && actor != authz.RoleSuperAdmin:
		return ErrSuperAdminGrant
	}
	return nil
}

// guardTarget keeps a super administrator's role out of reach of lower roles.
func (s *Service) guardTarget(ctx context.Context, sc scope.Scope, actor authz.Role, userID uuid.UUID) error {
	current, err := s.repo.RoleOf(ctx, sc.OrganizationID, userID)
	if err != nil {
		return err
	}
	if current == authz.RoleSuperAdmin && actor != authz.RoleSuperAdmin {
		return ErrSuperAdminChange
	}
	return nil
}

func (s *Service) changed(ctx context.Context, sc scope.Scope, action string, userID uuid.UUID, role authz.Role) {
	if err := s.cache.Invalidate(ctx, sc.OrganizationID, Resource); err != nil {
		s.logger.Warn("members cache invalidate", slog.Any("error", err))
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditEntry{
		OrganizationID: sc.OrganizationID,
		ActorID:        sc.UserID,
		Action:         action,
		Entity:         "member",
		EntityID:       userID.String(),
		Meta:           map[string]any{"role": role.String()},
	})
}
