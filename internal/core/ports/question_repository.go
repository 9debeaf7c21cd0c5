package ports

import (
	"context"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// ListQuestionsFilter carries the query parameters of the question listing.
type ListQuestionsFilter struct {
	Tag   string // optional: exact tag match
	Page  int    // 1-based
	Limit int    // capped by the service
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	FindByID(ctx context.Context, id string) (*domain.Question, error)
	List(ctx context.Context, filter ListQuestionsFilter) ([]*domain.Question, error)
	Delete(ctx context.Context, id string) error
}

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	Create(ctx context.Context, a *domain.Answer) (*domain.Answer, error)
	FindByID(ctx context.Context, id string) (*domain.Answer, error)
	// ListByQuestion returns the answers ranked by votes desc, then createdAt asc.
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error)
	// IncVotes atomically adds delta to the tally and returns the updated answer.
	IncVotes(ctx context.Context, answerID string, delta int) (*domain.Answer, error)
	// DeleteByQuestion removes every answer of a question and returns their ids.
	DeleteByQuestion(ctx context.Context, questionID string) ([]string, error)
}
