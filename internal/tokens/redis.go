package tokens

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edusync/gateway/internal/errors"
)

const defaultTTL = 8 * time.Hour

type RedisConfig struct {
	Redis  redis.UniversalClient
	Prefix string
	// TTL bounds how long a stored token outlives its last login. Zero means
	// the default of 8 hours, roughly a token's own lifetime.
	TTL time.Duration
}

type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(c RedisConfig) *RedisStore {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &RedisStore{
		redis:  c.Redis,
		prefix: c.Prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) Set(ctx context.Context, clientID, token string) error {
	if err := s.redis.Set(ctx, s.key(clientID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, clientID string) (string, error) {
	v, err := s.redis.Get(ctx, s.key(clientID)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("no token stored for client"))
	}
	if err != nil {
		return "", fmt.Errorf("retrieve token: %w", err)
	}

	return v, nil
}

func (s *RedisStore) Clear(ctx context.Context, clientID string) error {
	if err := s.redis.Del(ctx, s.key(clientID)).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	return nil
}

func (s *RedisStore) key(clientID string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, clientID)
}
