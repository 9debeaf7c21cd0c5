package domain

import "errors"

// Error taxonomy shared by the domain service and the client core.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrTransient       = errors.New("temporary failure")

	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrEmptyAnswer      = errors.New("answer text is empty")
	ErrInvalidVote      = errors.New("vote type must be up or down")
	ErrRateLimited      = errors.New("too many votes, slow down")

	ErrActionInFlight = errors.New("action already in progress")
	ErrNotConfirmed   = errors.New("action not confirmed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// IsNotFound reports whether err means the requested entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) || errors.Is(err, ErrAnswerNotFound)
}
