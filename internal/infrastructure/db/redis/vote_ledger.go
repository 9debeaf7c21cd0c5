package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// KEYS[1] ledger hash, ARGV[1] user id, ARGV[2] direction.
// Returns the previous standing vote, "" for none.
var toggleScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1]) or ''
if prev == ARGV[2] then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
return prev
`)

// KEYS[1] ledger hash, ARGV[1] user id, ARGV[2] expected standing, ARGV[3]
// replacement ("" removes). Returns 1 when the swap happened.
var revertScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1]) or ''
if cur ~= ARGV[2] then
	return 0
end
if ARGV[3] == '' then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
end
return 1
`)

// VoteLedger stores standing votes in one hash per answer.
// Key format: votes:<answer_id>, field <user_id>, value "up" | "down".
// Read-modify-write runs as Lua scripts so concurrent votes of one user
// serialise inside Redis.
type VoteLedger struct {
	client redis.Cmdable
}

func NewVoteLedger(client redis.Cmdable) *VoteLedger {
	return &VoteLedger{client: client}
}

func (l *VoteLedger) Get(ctx context.Context, answerID, userID string) (domain.VoteDirection, error) {
	v, err := l.client.HGet(ctx, ledgerKey(answerID), userID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.VoteNone, nil
	}
	if err != nil {
		return domain.VoteNone, fmt.Errorf("ledger get: %w", err)
	}
	return standing(v), nil
}

func (l *VoteLedger) Toggle(ctx context.Context, answerID, userID string, dir domain.VoteDirection) (domain.VoteDirection, error) {
	if !dir.Valid() {
		return domain.VoteNone, domain.ErrInvalidVote
	}
	v, err := toggleScript.Run(ctx, l.client, []string{ledgerKey(answerID)}, userID, string(dir)).Text()
	if err != nil {
		return domain.VoteNone, fmt.Errorf("ledger toggle: %w", err)
	}
	return standing(v), nil
}

func (l *VoteLedger) Revert(ctx context.Context, answerID, userID string, from, to domain.VoteDirection) (bool, error) {
	n, err := revertScript.Run(ctx, l.client, []string{ledgerKey(answerID)}, userID, string(from), string(to)).Int()
	if err != nil {
		return false, fmt.Errorf("ledger revert: %w", err)
	}
	return n == 1, nil
}

func (l *VoteLedger) Forget(ctx context.Context, answerIDs ...string) error {
	if len(answerIDs) == 0 {
		return nil
	}
	keys := make([]string, len(answerIDs))
	for i, id := range answerIDs {
		keys[i] = ledgerKey(id)
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("ledger forget: %w", err)
	}
	return nil
}

func ledgerKey(answerID string) string {
	return "votes:" + answerID
}

// standing maps a stored value to a direction; garbage counts as no vote.
func standing(v string) domain.VoteDirection {
	dir := domain.VoteDirection(v)
	if !dir.Valid() {
		return domain.VoteNone
	}
	return dir
}
