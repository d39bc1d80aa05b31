package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sentinel = "blacklisted"

// Store records access tokens that were invalidated before their natural
// expiry. Entries must carry the token's remaining lifetime as TTL: shorter
// would reopen the token, longer only wastes memory.
type Store interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	Close() error
}

// RedisStore is the process-wide revocation client. It is constructed once
// at startup and shared across requests; go-redis handles are safe for
// concurrent use.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient wraps an existing client, used by tests that run
// against miniredis.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := s.rdb.Get(ctx, token).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already past exp, nothing left to revoke.
		return nil
	}
	return s.rdb.Set(ctx, token, sentinel, ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
