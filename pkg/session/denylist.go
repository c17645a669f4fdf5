package session

import (
	"context"
	"time"

	"license-tracker/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers revoked session IDs until they expire.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) Denylist {
	return &redisDenylist{rdb: rdb}
}

func (d *redisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return d.rdb.Set(ctx, rediskey.BuildSessionRevokedKey(jti), 1, ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, rediskey.BuildSessionRevokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
