package identity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gouvernance-ai/gouvernance/internal/identity"
	"github.com/gouvernance-ai/gouvernance/internal/shared"
	_ "github.com/gouvernance-ai/gouvernance/testing"
)

type stubRepo struct {
	mu       sync.Mutex
	users    map[string]*identity.User
	profiles map[uuid.UUID]*identity.Profile
	sessions map[string]uuid.UUID
	err      error
	writeErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:    map[string]*identity.User{},
		profiles: map[uuid.UUID]*identity.Profile{},
		sessions: map[string]uuid.UUID{},
	}
}

func (s *stubRepo) addUser(t *testing.T, email, password string, active bool) *identity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &identity.User{ID: uuid.New(), Email: email, PasswordHash: string(hash), IsActive: active, CreatedAt: time.Now()}
	s.users[email] = u
	return u
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubRepo) FindUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindProfile(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	delete(s.sessions, id)
	return nil
}

func TestAuthenticate(t *testing.T) {
	repo := newStubRepo()
	user := repo.addUser(t, "claire@example.fr", "motdepasse", true)
	repo.addUser(t, "ancien@example.fr", "motdepasse", false)
	svc := identity.NewService(repo)

	got, err := svc.Authenticate(context.Background(), "claire@example.fr", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "claire@example.fr", "mauvais-mot")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "inconnu@example.fr", "motdepasse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ancien@example.fr", "motdepasse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateBackendFailure(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connexion perdue")
	_, err := identity.NewService(repo).Authenticate(context.Background(), "a@example.fr", "motdepasse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	repo := newStubRepo()
	user := repo.addUser(t, "claire@example.fr", "motdepasse", true)
	inactive := repo.addUser(t, "ancien@example.fr", "motdepasse", false)
	svc := identity.NewService(repo)

	got, err := svc.CurrentUser(context.Background(), user.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.Email, got.Email)

	for _, raw := range []string{"", "pas-un-uuid", uuid.NewString(), inactive.ID.String()} {
		got, err := svc.CurrentUser(context.Background(), raw)
		assert.NoError(t, err, raw)
		assert.Nil(t, got, raw)
	}
}

func TestCurrentProfile(t *testing.T) {
	repo := newStubRepo()
	user := repo.addUser(t, "claire@example.fr", "motdepasse", true)
	orgID := uuid.New()
	repo.profiles[user.ID] = &identity.Profile{UserID: user.ID, FullName: "Claire Martin", OrganizationID: &orgID}
	svc := identity.NewService(repo)

	profile, err := svc.CurrentProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, orgID, profile.Organization())

	orphan, err := svc.CurrentProfile(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, orphan.Organization())
}

func TestSessionEventsNotifySubscribers(t *testing.T) {
	repo := newStubRepo()
	svc := identity.NewService(repo)
	userID := uuid.New()

	var events []identity.EventKind
	unsubscribe := svc.Subscribe(func(evt identity.AuthEvent) {
		assert.Equal(t, userID, evt.UserID)
		events = append(events, evt.Kind)
	})

	require.NoError(t, svc.RegisterSession(context.Background(), "s1", userID, time.Now().Add(time.Hour), "127.0.0.1", "test"))
	assert.Contains(t, repo.sessions, "s1")
	require.NoError(t, svc.RemoveSession(context.Background(), "s1", userID))
	assert.NotContains(t, repo.sessions, "s1")
	assert.Equal(t, []identity.EventKind{identity.EventSignedIn, identity.EventSignedOut}, events)

	unsubscribe()
	require.NoError(t, svc.RegisterSession(context.Background(), "s2", userID, time.Now().Add(time.Hour), "", ""))
	assert.Len(t, events, 2)
}

func TestSessionEventsSkippedOnFailure(t *testing.T) {
	repo := newStubRepo()
	repo.writeErr = errors.New("connexion perdue")
	svc := identity.NewService(repo)

	var events []identity.EventKind
	svc.Subscribe(func(evt identity.AuthEvent) { events = append(events, evt.Kind) })

	userID := uuid.New()
	assert.Error(t, svc.RegisterSession(context.Background(), "s1", userID, time.Now().Add(time.Hour), "", ""))
	assert.Error(t, svc.RemoveSession(context.Background(), "s1", userID))
	assert.Empty(t, events)
}
