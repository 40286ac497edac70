package ratelimiter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript trims the window, counts, and conditionally records a new
// timestamp in one atomic step. Scores are microsecond timestamps; members
// carry a random suffix so concurrent requests in the same microsecond are
// counted separately.
var recordScript = redis.NewScript(`
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, cutoff)
local count = redis.call('ZCARD', KEYS[1])
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
	redis.call('PEXPIRE', KEYS[1], math.ceil(tonumber(ARGV[2]) / 1000))
	return {1, count + 1}
end
return {0, count}
`)

// RedisStore implements Store on a Redis sorted set per key. Every operation
// runs under opTimeout so a slow Redis degrades to fail-open instead of
// stalling requests.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// NewRedisStore creates a Redis-backed store. opTimeout bounds each call;
// zero falls back to 500ms.
func NewRedisStore(client redis.UniversalClient, opTimeout time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}
	return &RedisStore{client: client, opTimeout: opTimeout}, nil
}

// RecordIfAllowed implements Store.
func (s *RedisStore) RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	nowMicro := now.UnixMicro()
	member := strconv.FormatInt(nowMicro, 10) + "-" + uuid.NewString()

	res, err := recordScript.Run(ctx, s.client, []string{key},
		nowMicro,
		window.Microseconds(),
		limit,
		member,
	).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, errors.New("ratelimiter: unexpected script reply")
	}

	return res[0] == 1, res[1], nil
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.Del(ctx, key).Err()
}
