package ports

import (
	"context"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// VoteLedger remembers each user's standing vote per answer so the tally can
// apply one-vote-per-user and toggle rules.
type VoteLedger interface {
	Get(ctx context.Context, answerID, userID string) (domain.VoteDirection, error)
	// Toggle atomically applies a vote in direction dir: the same direction
	// as the standing vote removes it, anything else replaces it. It returns
	// the standing vote from before the change.
	Toggle(ctx context.Context, answerID, userID string, dir domain.VoteDirection) (prev domain.VoteDirection, err error)
	// Revert sets the standing vote back to to, but only while it still is
	// from. It reports whether it did.
	Revert(ctx context.Context, answerID, userID string, from, to domain.VoteDirection) (bool, error)
	// Forget drops every ledger entry of the given answers.
	Forget(ctx context.Context, answerIDs ...string) error
}

// VoteLimiter throttles how often a user may vote.
type VoteLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// PurgeJob asks for the cleanup of everything that hung off a deleted question.
type PurgeJob struct {
	QuestionID string
}

// PurgeQueue accepts cleanup jobs for asynchronous processing.
type PurgeQueue interface {
	Enqueue(job PurgeJob)
}
