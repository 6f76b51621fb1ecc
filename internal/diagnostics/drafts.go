package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gouvernance-ai/gouvernance/internal/scope"
)

// DraftStore keeps unfinished diagnostics in Redis, one per user and organization.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore builds a DraftStore.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(sc scope.Scope) string {
	return "gouvernance:diagnostic:draft:" + sc.OrganizationID.String() + ":" + sc.UserID.String()
}

// Load returns the stored draft. A missing or unreadable draft reports
// ok=false; an unreadable one is removed.
func (s *DraftStore) Load(ctx context.Context, sc scope.Scope) (Draft, bool, error) {
	if s == nil || s.client == nil || !sc.HasOrganization() {
		return Draft{}, false, nil
	}
	raw, err := s.client.Get(ctx, draftKey(sc)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("diagnostics: load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil || d.Answers == nil {
		_ = s.client.Del(ctx, draftKey(sc)).Err()
		return Draft{}, false, nil
	}
	return d, true, nil
}

// Save replaces the stored draft.
func (s *DraftStore) Save(ctx context.Context, sc scope.Scope, answers Answers) (Draft, error) {
	if !sc.HasOrganization() {
		return Draft{}, scope.ErrNoOrganization
	}
	d := Draft{Answers: answers, UpdatedAt: time.Now().UTC()}
	if s == nil || s.client == nil {
		return d, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return Draft{}, err
	}
	if err := s.client.Set(ctx, draftKey(sc), raw, s.ttl).Err(); err != nil {
		return Draft{}, fmt.Errorf("diagnostics: save draft: %w", err)
	}
	return d, nil
}

// Discard removes the stored draft.
func (s *DraftStore) Discard(ctx context.Context, sc scope.Scope) error {
	if s == nil || s.client == nil || !sc.HasOrganization() {
		return nil
	}
	if err := s.client.Del(ctx, draftKey(sc)).Err(); err != nil {
		return fmt.Errorf("diagnostics: discard draft: %w", err)
	}
	return nil
}
