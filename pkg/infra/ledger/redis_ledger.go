package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/promptgate/promptgate/pkg/domain/usage"
)

const usageKeyPattern = "usage:%s"

// recordScript charges cost against the identity's fixed window in a single
// round trip. The key expires with the window, so an elapsed window is simply
// an absent key and the first charge after expiry opens a fresh one. Redis
// runs scripts single-threaded, which gives the per-identity serialization
// the ledger contract requires for free.
const recordScript = `
local count = redis.call('INCRBY', KEYS[1], ARGV[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
  ttl = tonumber(ARGV[2])
end
return {count, ttl}
`

type RedisLedger struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLedger(client *redis.Client, limit int, window time.Duration) *RedisLedger {
	return &RedisLedger{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLedger) RecordAndCheck(ctx context.Context, identity string, cost int64) (usage.Decision, error) {
	key := fmt.Sprintf(usageKeyPattern, identity)

	res, err := l.client.Eval(ctx, recordScript, []string{key}, cost, l.window.Milliseconds()).Result()
	if err != nil {
		return usage.Decision{}, fmt.Errorf("%w: %v", usage.ErrStorageUnavailable, err)
	}

	count, ttl, err := parseScriptReply(res)
	if err != nil {
		return usage.Decision{}, err
	}

	return l.decision(count, ttl), nil
}

func (l *RedisLedger) Peek(ctx context.Context, identity string) (usage.Decision, error) {
	key := fmt.Sprintf(usageKeyPattern, identity)

	count, err := l.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return l.decision(0, l.window.Milliseconds()), nil
	}
	if err != nil {
		return usage.Decision{}, fmt.Errorf("%w: %v", usage.ErrStorageUnavailable, err)
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return usage.Decision{}, fmt.Errorf("%w: %v", usage.ErrStorageUnavailable, err)
	}

	return l.decision(count, ttl.Milliseconds()), nil
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", usage.ErrStorageUnavailable, err)
	}
	return nil
}

func (l *RedisLedger) decision(count, ttlMillis int64) usage.Decision {
	if ttlMillis < 0 {
		ttlMillis = l.window.Milliseconds()
	}
	remaining := time.Duration(ttlMillis) * time.Millisecond

	return usage.Decision{
		Allowed:     count <= l.limit,
		Count:       count,
		Limit:       l.limit,
		WindowStart: l.now().Add(remaining - l.window),
		RetryAfter:  remaining,
	}
}

func parseScriptReply(res interface{}) (count int64, ttl int64, err error) {
	reply, ok := res.([]interface{})
	if !ok || len(reply) != 2 {
		return 0, 0, fmt.Errorf("unexpected ledger script reply: %v", res)
	}
	count, okCount := reply[0].(int64)
	ttl, okTTL := reply[1].(int64)
	if !okCount || !okTTL {
		return 0, 0, fmt.Errorf("unexpected ledger script reply types: %v", res)
	}
	return count, ttl, nil
}
