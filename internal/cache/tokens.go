package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore is the allow-list of live refresh tokens, keyed by JWT ID.
// Logout and rotation remove an entry; entries also expire with the token.
type TokenStore interface {
	Allow(ctx context.Context, jti, userID string, ttl time.Duration) error
	// Owner returns the user the token was issued to, or "" when it is unknown or revoked.
	Owner(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string) error
}

type redisTokenStore struct {
	client *redis.Client
}

// NewTokenStore returns a Redis allow-list, or an in-process one when client is nil.
func NewTokenStore(client *redis.Client) TokenStore {
	if client == nil {
		return NewMemoryTokenStore(time.Now)
	}
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Allow(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(jti), userID, ttl).Err()
}

func (s *redisTokenStore) Owner(ctx context.Context, jti string) (string, error) {
	owner, err := s.client.Get(ctx, refreshKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return owner, err
}

func (s *redisTokenStore) Revoke(ctx context.Context, jti string) error {
	return s.client.Del(ctx, refreshKey(jti)).Err()
}

func refreshKey(jti string) string {
	return "refresh:" + jti
}

type tokenEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryTokenStore is a single-process allow-list.
type MemoryTokenStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]tokenEntry
}

func NewMemoryTokenStore(now func() time.Time) *MemoryTokenStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenStore{now: now, tokens: map[string]tokenEntry{}}
}

func (s *MemoryTokenStore) Allow(_ context.Context, jti, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = tokenEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Owner(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[jti]
	if !ok {
		return "", nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.tokens, jti)
		return "", nil
	}
	return entry.userID, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, jti)
	return nil
}
