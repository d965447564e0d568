package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a durable tier for server-side deployments where many
// instances share one credential pair (gateway / BFF setups). Both tokens
// live under a configurable key prefix.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

const redisOpTimeout = 3 * time.Second

// NewRedisStore wraps an existing go-redis client. prefix namespaces the
// keys, e.g. "skillswap:tokens:user42".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		timeout: redisOpTimeout,
	}
}

func (s *RedisStore) accessKey() string  { return s.prefix + ":access" }
func (s *RedisStore) refreshKey() string { return s.prefix + ":refresh" }

func (s *RedisStore) AccessToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.accessKey()).Result()
	if err != nil {
		return ""
	}
	return val
}

func (s *RedisStore) RefreshToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.refreshKey()).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetTokens writes both keys in one pipeline so a reader sees either the old
// pair or the new one. The access key expires with the token itself when the
// exp claim is decodable.
func (s *RedisStore) SetTokens(access, refresh string, _ PersistenceClass) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var accessTTL time.Duration
	if remaining, ok := TimeUntilExpiry(access); ok && remaining > 0 {
		accessTTL = remaining
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.accessKey(), access, accessTTL)
		pipe.Set(ctx, s.refreshKey(), refresh, 0)
		return nil
	})
	return err
}

func (s *RedisStore) UpdateTokens(access, refresh string) error {
	return s.SetTokens(access, refresh, Permanent)
}

func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.client.Del(ctx, s.accessKey(), s.refreshKey()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
