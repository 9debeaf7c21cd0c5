package ports

import (
	"context"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// CreateQuestionInput carries everything needed to post a question.
// Author is nil for anonymous submissions.
type CreateQuestionInput struct {
	Title       string
	Description string
	Tags        []string
	Author      *domain.User
}

// QuestionService defines the question use cases of the domain service.
type QuestionService interface {
	List(ctx context.Context, filter ListQuestionsFilter) ([]*domain.Question, error)
	Get(ctx context.Context, id string) (*domain.Question, error)
	Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

// AnswerService defines the answer and vote use cases of the domain service.
type AnswerService interface {
	List(ctx context.Context, questionID string) ([]domain.Answer, error)
	Create(ctx context.Context, actor *domain.User, questionID, text string) (*domain.Answer, error)
	Vote(ctx context.Context, actor *domain.User, intent domain.VoteIntent) (*domain.VoteResult, error)
}

// PurgeService removes the answers and vote ledger entries of a deleted question.
type PurgeService interface {
	Purge(ctx context.Context, job PurgeJob) error
}
