package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type QuestionService struct {
	repo  ports.QuestionRepository
	purge ports.PurgeQueue
	log   zerolog.Logger
}

var _ ports.QuestionService = (*QuestionService)(nil)

func NewQuestionService(repo ports.QuestionRepository, purge ports.PurgeQueue, log zerolog.Logger) *QuestionService {
	return &QuestionService{repo: repo, purge: purge, log: log}
}

// List returns questions newest first. Page and limit are clamped.
func (s *QuestionService) List(ctx context.Context, f ports.ListQuestionsFilter) ([]*domain.Question, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	f.Tag = strings.ToLower(strings.TrimSpace(f.Tag))

	questions, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []*domain.Question{}
	}
	return questions, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (*domain.Question, error) {
	return s.repo.FindByID(ctx, id)
}

// Create posts a question. A nil Author stores an anonymous question.
func (s *QuestionService) Create(ctx context.Context, in ports.CreateQuestionInput) (*domain.Question, error) {
	title := sanitize(in.Title)
	description := sanitize(in.Description)
	if title == "" || description == "" {
		return nil, domain.ErrInvalidQuestion
	}

	q := &domain.Question{
		Title:       title,
		Description: description,
		Tags:        domain.NormalizeTags(in.Tags),
		Author:      in.Author.Public(),
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create question")
		return nil, err
	}

	ev := s.log.Info().Str("question_id", created.ID)
	if created.Author != nil {
		ev = ev.Str("author_id", created.Author.ID)
	}
	ev.Msg("question created")
	return created, nil
}

// Delete removes a question. Authors may delete their own questions; admins
// may delete any, including anonymous ones. Answers and votes are purged in
// the background.
func (s *QuestionService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil || actor.ID == "" {
		return domain.ErrUnauthenticated
	}

	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanDelete(actor, q) && !actor.IsAdmin() {
		s.log.Warn().Str("question_id", id).Str("actor_id", actor.ID).Msg("delete refused")
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	if s.purge != nil {
		s.purge.Enqueue(ports.PurgeJob{QuestionID: id})
	}

	s.log.Info().Str("question_id", id).Str("actor_id", actor.ID).Msg("question deleted")
	return nil
}
