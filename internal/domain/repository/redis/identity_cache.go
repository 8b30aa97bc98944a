package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domainErrors "github.com/AleksandrRevuka/group-project-photoapp/internal/domain/errors"
	"github.com/AleksandrRevuka/group-project-photoapp/internal/domain/models"
)

// IdentityCache is a TTL-bound Redis cache mapping a subject (email) to its
// authorization snapshot. Concurrent population on a miss is last-writer-wins
// and safe: every writer derives its value from the same authoritative
// Postgres read. Correctness rests on mutation paths calling Invalidate
// before reporting success, not on locking.
type IdentityCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

func NewIdentityCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, logger: logger, ttl: ttl}
}

func identityKey(subject string) string {
	return fmt.Sprintf("user:%s", subject)
}

// Get returns the cached identity for subject, or ErrCacheMiss.
func (c *IdentityCache) Get(ctx context.Context, subject string) (*models.Identity, error) {
	data, err := c.client.Get(ctx, identityKey(subject)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domainErrors.ErrCacheMiss
		}
		c.logger.Error("failed to get identity from cache", zap.Error(err), zap.String("subject", subject))
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		c.logger.Error("failed to unmarshal cached identity", zap.Error(err), zap.String("subject", subject))
		// A corrupt entry behaves like a miss; the caller repopulates it.
		return nil, domainErrors.ErrCacheMiss
	}
	return &identity, nil
}

// Set stores the identity snapshot under its subject with the cache TTL.
func (c *IdentityCache) Set(ctx context.Context, identity *models.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := c.client.Set(ctx, identityKey(identity.Email), data, c.ttl).Err(); err != nil {
		c.logger.Error("failed to set identity in cache", zap.Error(err), zap.String("subject", identity.Email))
		return err
	}
	return nil
}

// Invalidate deletes the subject's entry. Deleting a missing key is a no-op,
// so Invalidate is safe to call unconditionally from every mutation path.
func (c *IdentityCache) Invalidate(ctx context.Context, subject string) error {
	if err := c.client.Del(ctx, identityKey(subject)).Err(); err != nil {
		c.logger.Error("failed to invalidate cached identity", zap.Error(err), zap.String("subject", subject))
		return err
	}
	return nil
}
