package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RevocationStore is the Redis-backed blacklist of tokens that must be
// rejected before their natural expiry: logged-out access tokens and
// superseded refresh tokens. Entries carry the token's remaining lifetime as
// TTL, so the blacklist never outgrows the set of still-live tokens.
type RevocationStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRevocationStore(client *redis.Client, logger *zap.Logger) *RevocationStore {
	return &RevocationStore{client: client, logger: logger}
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:token:%s", token)
}

// Revoke marks the token as no longer honorable for ttl.
func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; verification rejects it anyway.
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		s.logger.Error("failed to add token to blacklist", zap.Error(err))
		return err
	}
	return nil
}

// IsRevoked reports whether the token is on the blacklist.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		s.logger.Error("failed to check token blacklist", zap.Error(err))
		return false, err
	}
	return exists > 0, nil
}
