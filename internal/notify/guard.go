package notify

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard is an at-most-once dispatch guard backed by SET NX with TTL.
// The TTL bounds key growth; once it lapses a re-delivered callback could
// notify again, which is acceptable for a best-effort channel.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisGuard) FirstDispatch(ctx context.Context, callSID string) (bool, error) {
	if g.rdb == nil {
		return false, errors.New("notify: redis client is nil")
	}
	if callSID == "" {
		// No way to key the guard; let the dispatch through.
		return true, nil
	}
	ok, err := g.rdb.SetNX(ctx, "cascade:notified:"+callSID, 1, g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
