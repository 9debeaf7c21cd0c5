package ports

import (
	"context"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// QAGateway is the client's view of the Q&A domain service. Every mutating
// call takes the bearer token explicitly; an empty token sends no header.
//
// Implementations map failures onto the domain taxonomy: ErrUnauthenticated,
// ErrForbidden, ErrQuestionNotFound / ErrAnswerNotFound and ErrTransient.
type QAGateway interface {
	GetQuestion(ctx context.Context, id string) (*domain.Question, error)
	ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
	ListQuestions(ctx context.Context, filter ListQuestionsFilter) ([]*domain.Question, error)

	CreateQuestion(ctx context.Context, token string, input CreateQuestionInput) (*domain.Question, error)
	CreateAnswer(ctx context.Context, token, questionID, text string) (*domain.Answer, error)
	Vote(ctx context.Context, token string, intent domain.VoteIntent) (*domain.VoteResult, error)
	DeleteQuestion(ctx context.Context, token, questionID string) error

	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}
