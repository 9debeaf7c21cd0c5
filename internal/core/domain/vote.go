package domain

import "strings"

// VoteDirection is the direction of a VoteIntent.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
	// VoteNone is the ledger state of a user who has not voted (or retracted).
	VoteNone VoteDirection = ""
)

// ParseVoteDirection accepts only "up" and "down".
func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(strings.ToLower(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	}
	return VoteNone, ErrInvalidVote
}

// Valid reports whether d is up or down.
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Delta is the tally change of a fresh vote in direction d.
func (d VoteDirection) Delta() int {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	}
	return 0
}

// VoteIntent is a transient command; it is never stored on the client.
type VoteIntent struct {
	AnswerID  string
	Direction VoteDirection
}

// VoteResult is the server's answer to a VoteIntent. UserVote is the caller's
// standing vote after toggle rules were applied.
type VoteResult struct {
	Answer   Answer        `json:"answer"`
	UserVote VoteDirection `json:"userVote"`
}

// TallyChange computes how a tally moves when a user whose standing vote is
// prev casts next. Casting the same direction twice retracts the vote.
func TallyChange(prev, next VoteDirection) (delta int, standing VoteDirection) {
	switch {
	case prev == next:
		return -next.Delta(), VoteNone
	case prev == VoteNone:
		return next.Delta(), next
	default:
		return next.Delta() - prev.Delta(), next
	}
}
