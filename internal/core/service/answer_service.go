package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

type AnswerService struct {
	questions ports.QuestionRepository
	answers   ports.AnswerRepository
	ledger    ports.VoteLedger
	limiter   ports.VoteLimiter
	log       zerolog.Logger
}

var _ ports.AnswerService = (*AnswerService)(nil)

func NewAnswerService(
	questions ports.QuestionRepository,
	answers ports.AnswerRepository,
	ledger ports.VoteLedger,
	limiter ports.VoteLimiter,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		questions: questions,
		answers:   answers,
		ledger:    ledger,
		limiter:   limiter,
		log:       log,
	}
}

// List returns a question's answers in ranking order. A missing question is
// reported as ErrQuestionNotFound even if orphaned answers still exist.
func (s *AnswerService) List(ctx context.Context, questionID string) ([]domain.Answer, error) {
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return answers, nil
}

func (s *AnswerService) Create(ctx context.Context, actor *domain.User, questionID, text string) (*domain.Answer, error) {
	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	text = sanitize(text)
	if text == "" {
		return nil, domain.ErrEmptyAnswer
	}
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, err
	}

	a := &domain.Answer{
		QuestionID: questionID,
		Text:       text,
		Author:     actor.Public(),
		CreatedAt:  time.Now().UTC(),
	}
	created, err := s.answers.Create(ctx, a)
	if err != nil {
		s.log.Error().Err(err).Str("question_id", questionID).Msg("failed to create answer")
		return nil, err
	}

	s.log.Info().Str("answer_id", created.ID).Str("question_id", questionID).Str("author_id", actor.ID).Msg("answer created")
	return created, nil
}

// Vote applies the toggle rules against the caller's standing vote and
// returns the answer with its authoritative tally.
func (s *AnswerService) Vote(ctx context.Context, actor *domain.User, in domain.VoteIntent) (*domain.VoteResult, error) {
	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !in.Direction.Valid() {
		return nil, domain.ErrInvalidVote
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, actor.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", actor.ID).Msg("vote limiter unavailable, allowing")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	answer, err := s.answers.FindByID(ctx, in.AnswerID)
	if err != nil {
		return nil, err
	}
	// Answers of a deleted question linger until the purge runs.
	if _, err := s.questions.FindByID(ctx, answer.QuestionID); err != nil {
		return nil, err
	}

	prev, err := s.ledger.Toggle(ctx, in.AnswerID, actor.ID, in.Direction)
	if err != nil {
		return nil, fmt.Errorf("toggle vote: %w", err)
	}
	delta, standing := domain.TallyChange(prev, in.Direction)

	if delta != 0 {
		answer, err = s.answers.IncVotes(ctx, in.AnswerID, delta)
		if err != nil {
			s.log.Error().Err(err).Str("answer_id", in.AnswerID).Int("delta", delta).Msg("tally update failed")
			// Undo the ledger change unless a newer vote has already moved it.
			if _, rbErr := s.ledger.Revert(ctx, in.AnswerID, actor.ID, standing, prev); rbErr != nil {
				s.log.Error().Err(rbErr).Str("answer_id", in.AnswerID).Msg("vote ledger rollback failed")
			}
			return nil, err
		}
	}

	s.log.Debug().
		Str("answer_id", in.AnswerID).
		Str("user_id", actor.ID).
		Str("direction", string(in.Direction)).
		Int("delta", delta).
		Int("votes", answer.Votes).
		Msg("vote applied")

	return &domain.VoteResult{Answer: *answer, UserVote: standing}, nil
}
