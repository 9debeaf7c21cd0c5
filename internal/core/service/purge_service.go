package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/core/ports"
)

type purgeService struct {
	answers ports.AnswerRepository
	ledger  ports.VoteLedger
	log     zerolog.Logger
}

// NewPurgeService returns the cleanup run for deleted questions.
func NewPurgeService(answers ports.AnswerRepository, ledger ports.VoteLedger, log zerolog.Logger) ports.PurgeService {
	return &purgeService{answers: answers, ledger: ledger, log: log}
}

// Purge deletes the answers of a removed question, then their vote ledger
// entries. It is safe to run twice for the same job.
func (s *purgeService) Purge(ctx context.Context, job ports.PurgeJob) error {
	ids, err := s.answers.DeleteByQuestion(ctx, job.QuestionID)
	if err != nil {
		return fmt.Errorf("purge answers of %s: %w", job.QuestionID, err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.ledger.Forget(ctx, ids...); err != nil {
		return fmt.Errorf("purge votes of %s: %w", job.QuestionID, err)
	}
	s.log.Info().Str("question_id", job.QuestionID).Int("answers", len(ids)).Msg("question purged")
	return nil
}
