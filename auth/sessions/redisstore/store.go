// Package redisstore implements the sessions.Store interface on Redis.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-blog-server/auth/sessions"
)

var _ sessions.Store = (*Store)(nil)

// incrementWithExpiry increments a counter and, only when the counter was just
// created, attaches the TTL. Executed as a script so concurrent callers cannot
// interleave between the INCR and the PEXPIRE.
var incrementWithExpiry = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// compareAndDelete deletes a key only when it still holds the expected value.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store is a Redis-backed session store.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a Store on top of an existing Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("[Store.Put] redis SET %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("[Store.Get] redis GET %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("[Store.Delete] redis DEL %q: %w", key, err)
	}
	return nil
}

func (s *Store) IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := incrementWithExpiry.Run(ctx, s.rdb, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("[Store.IncrementWithExpiry] redis script %q: %w", key, err)
	}
	return count, nil
}

func (s *Store) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	deleted, err := compareAndDelete.Run(ctx, s.rdb, []string{key}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("[Store.CompareAndDelete] redis script %q: %w", key, err)
	}
	return deleted == 1, nil
}
