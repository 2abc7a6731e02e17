package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript performs the whole reset-or-increment in one atomic step on
// the server: the first increment of a fresh key also arms its expiry, and a
// key that somehow lost its TTL gets re-armed instead of counting forever.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// decrementScript refunds one counted request without ever pushing the
// counter below zero or touching absent keys.
var decrementScript = redis.NewScript(`
local count = redis.call('GET', KEYS[1])
if count and tonumber(count) > 0 then
	redis.call('DECR', KEYS[1])
end
return 0
`)

// RedisStore keeps window counters in Redis. Durable across restarts (subject
// to the server's persistence configuration) and safe across server processes
// because both scripts execute atomically on the server. Entries expire via
// native TTLs, so no sweep is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKeyPrefix sets the namespace prefix for counter keys.
func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a durable store on the given client. The client comes
// from pkg/redis and is owned by the caller.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, err
	}

	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)

	return count, time.Now().Add(time.Duration(ttlMs) * time.Millisecond), nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	return decrementScript.Run(ctx, s.client, []string{s.prefix + key}).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Time, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.prefix+key)
	ttlCmd := pipe.PTTL(ctx, s.prefix+key)

	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, err
	}

	count, err := getCmd.Int64()
	if err != nil {
		return 0, time.Time{}, err
	}

	ttl := ttlCmd.Val()
	if ttl <= 0 {
		return 0, time.Time{}, nil
	}

	return count, time.Now().Add(ttl), nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Sweep is a no-op: Redis removes expired counters itself via the TTL armed
// on first increment.
func (s *RedisStore) Sweep(ctx context.Context) (int64, error) {
	return 0, nil
}
