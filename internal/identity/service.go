package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gouvernance-ai/gouvernance/internal/shared"
)

// Service wraps authentication rules and exposes the current user and profile.
type Service struct {
	repo Repository
	now  func() time.Time

	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(AuthEvent)
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, subscribers: make(map[int]func(AuthEvent))}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the active user behind a session user id. An empty,
// malformed, unknown or inactive id yields (nil, nil).
func (s *Service) CurrentUser(ctx context.Context, rawID string) (*User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil
	}
	user, err := s.repo.FindUser(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// CurrentProfile loads the profile of userID. A missing profile is returned
// as an empty profile without organization.
func (s *Service) CurrentProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	p, err := s.repo.FindProfile(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return Profile{UserID: userID}, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return *p, nil
}

// RegisterSession persists the session metadata and announces the sign-in.
func (s *Service) RegisterSession(ctx context.Context, id string, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	if err := s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua); err != nil {
		return err
	}
	s.publish(AuthEvent{Kind: EventSignedIn, UserID: userID, At: s.now()})
	return nil
}

// RemoveSession deletes a session record and announces the sign-out.
func (s *Service) RemoveSession(ctx context.Context, id string, userID uuid.UUID) error {
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.publish(AuthEvent{Kind: EventSignedOut, UserID: userID, At: s.now()})
	return nil
}

// Subscribe registers fn for auth state changes and returns an unsubscribe func.
func (s *Service) Subscribe(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Service) publish(evt AuthEvent) {
	s.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(evt)
	}
}
