package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfileTTL applies when configuration leaves cache.profile_ttl unset.
const DefaultProfileTTL = 5 * time.Minute

// ProfileCache keeps recently read profiles. Misses and cache failures both read as "not cached".
type ProfileCache interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Invalidate(ctx context.Context, userID primitive.ObjectID)
}

// profileEntry keeps the fields User hides from JSON that the profile service still needs.
type profileEntry struct {
	User      domain.User `json:"user"`
	AvatarKey string      `json:"avatarKey,omitempty"`
}

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	if client == nil {
		return NoopProfileCache{}
	}
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &redisProfileCache{client: client, ttl: ttl}
}

func (c *redisProfileCache) Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, bool) {
	raw, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: profile cache get failed for %s: %v", userID.Hex(), err)
		}
		return nil, false
	}

	var entry profileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Printf("WARN: dropping unreadable profile cache entry for %s: %v", userID.Hex(), err)
		c.Invalidate(ctx, userID)
		return nil, false
	}
	user := entry.User
	user.AvatarKey = entry.AvatarKey
	return &user, true
}

func (c *redisProfileCache) Set(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(profileEntry{User: *user, AvatarKey: user.AvatarKey})
	if err != nil {
		log.Printf("WARN: profile cache encode failed for %s: %v", user.ID.Hex(), err)
		return
	}
	if err := c.client.Set(ctx, profileKey(user.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("WARN: profile cache set failed for %s: %v", user.ID.Hex(), err)
	}
}

func (c *redisProfileCache) Invalidate(ctx context.Context, userID primitive.ObjectID) {
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		log.Printf("WARN: profile cache invalidate failed for %s: %v", userID.Hex(), err)
	}
}

func profileKey(userID primitive.ObjectID) string {
	return "profile:" + userID.Hex()
}

// NoopProfileCache never stores anything.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(context.Context, primitive.ObjectID) (*domain.User, bool) { return nil, false }
func (NoopProfileCache) Set(context.Context, *domain.User)                           {}
func (NoopProfileCache) Invalidate(context.Context, primitive.ObjectID)              {}
