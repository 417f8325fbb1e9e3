package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked_token:"

type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore backs token revocation with redis; entries expire
// together with the token they shadow.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	return &redisRevocationStore{client: client}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired, nothing to shadow.
		return nil
	}
	return s.client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revocationKeyPrefix+tokenID).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
