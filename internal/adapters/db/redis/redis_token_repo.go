package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

type RedisTokenRepo struct {
	client *redis.Client
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
	}
}

// Revoke marks jti as revoked until the token itself would have expired.
func (r *RedisTokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// already dead, nothing can present it again
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (r *RedisTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		// fail closed
		return true, err
	}
	return n > 0, nil
}
