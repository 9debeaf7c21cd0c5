package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VoteLimiter is a fixed-window counter per user.
// Key format: ratelimit:vote:<user_id>:<window_start_unix>
type VoteLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewVoteLimiter allows limit votes per window. A non-positive limit disables
// limiting.
func NewVoteLimiter(client redis.Cmdable, limit int, window time.Duration) *VoteLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &VoteLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

func (l *VoteLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	key := l.key(userID, l.now())
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("vote limiter: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

func (l *VoteLimiter) key(userID string, at time.Time) string {
	start := at.Truncate(l.window).Unix()
	return fmt.Sprintf("ratelimit:vote:%s:%d", userID, start)
}
