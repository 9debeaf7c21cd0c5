// Package interaction is the client-side core of the Q&A system: it gates
// mutating intents on the current session, sends them to the domain service
// and re-fetches the affected aggregate after every successful mutation.
//
// The core never computes vote tallies or patches snapshots locally. The
// service may apply rules the client cannot see (one vote per user, toggles,
// rate limits, ranking), so the only trustworthy state is a fresh fetch.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// Messages shown through the shell.
const (
	MsgLoginToAnswer   = "Please login to answer questions"
	MsgLoginToVote     = "Please login to vote"
	MsgLoginToDelete   = "Please login to delete questions"
	MsgLoginToAsk      = "Please login to ask questions"
	MsgOwnQuestionOnly = "You can only delete your own questions"
	MsgConfirmDelete   = "Are you sure you want to delete this question? This action cannot be undone."
	MsgDeleted         = "Question deleted successfully!"
	MsgDeleteFailed    = "Error deleting question. Please try again."
	MsgAnswerFailed    = "Error posting answer. Please try again."
	MsgVoteFailed      = "Error voting. Please try again."
	MsgAskFailed       = "Error posting question. Please try again."
	MsgQuestionGone    = "This question no longer exists."
	MsgAnswerGone      = "This answer no longer exists."
)

// Core sequences mutating intents against the domain service.
type Core struct {
	gateway ports.QAGateway
	session ports.SessionReader
	shell   ports.Shell
	store   *AggregateStore
	flights *inFlight
	log     zerolog.Logger
}

func NewCore(gateway ports.QAGateway, session ports.SessionReader, shell ports.Shell, store *AggregateStore, log zerolog.Logger) *Core {
	if store == nil {
		store = NewAggregateStore()
	}
	return &Core{
		gateway: gateway,
		session: session,
		shell:   shell,
		store:   store,
		flights: newInFlight(),
		log:     log,
	}
}

// Store exposes the snapshots the view renders from.
func (c *Core) Store() *AggregateStore {
	return c.store
}

// Submitting, Voting and Deleting report whether the matching action is in
// flight, so the view can disable its controls.
func (c *Core) Submitting(questionID string) bool { return c.flights.busy(actionSubmit, questionID) }
func (c *Core) Voting(answerID string) bool       { return c.flights.busy(actionVote, answerID) }
func (c *Core) Deleting(questionID string) bool   { return c.flights.busy(actionDelete, questionID) }

// FetchAggregate loads the question and its answers as two independent
// requests. If either fails the aggregate is unavailable as a whole. When a
// newer fetch for the same question has already landed, its result is
// returned instead of this one.
func (c *Core) FetchAggregate(ctx context.Context, questionID string) (*domain.Aggregate, error) {
	ticket := c.store.Begin(questionID)
	agg, err := c.load(ctx, questionID)

	if !c.store.Apply(questionID, ticket, agg, err) {
		c.log.Debug().Str("question_id", questionID).Uint64("ticket", ticket).Msg("stale aggregate discarded")
		if cur, ok := c.store.Get(questionID); ok {
			return cur.Aggregate, cur.Err
		}
	}
	return agg, err
}

// Invalidate re-fetches the aggregate of questionID. Every successful
// mutation ends with it.
func (c *Core) Invalidate(ctx context.Context, questionID string) error {
	_, err := c.FetchAggregate(ctx, questionID)
	return err
}

func (c *Core) load(ctx context.Context, questionID string) (*domain.Aggregate, error) {
	var (
		question *domain.Question
		answers  []domain.Answer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.gateway.GetQuestion(gctx, questionID)
		question = q
		return err
	})
	g.Go(func() error {
		a, err := c.gateway.ListAnswers(gctx, questionID)
		answers = a
		return err
	})
	if err := g.Wait(); err != nil {
		if domain.IsNotFound(err) {
			return nil, fmt.Errorf("fetch aggregate %s: %w", questionID, domain.ErrQuestionNotFound)
		}
		return nil, fmt.Errorf("fetch aggregate %s: %w", questionID, classify(err))
	}
	if question == nil {
		return nil, fmt.Errorf("fetch aggregate %s: %w", questionID, domain.ErrQuestionNotFound)
	}

	owned := make([]domain.Answer, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" {
			a.QuestionID = questionID
		}
		if a.QuestionID != questionID {
			continue
		}
		owned = append(owned, a)
	}
	return &domain.Aggregate{Question: question, Answers: owned}, nil
}

// SubmitAnswer posts the draft as an answer to questionID. A blank draft
// issues no request. The draft is cleared only once the service accepted the
// answer, and only if it was not edited meanwhile; every failure leaves it
// exactly as typed.
func (c *Core) SubmitAnswer(ctx context.Context, questionID string, draft *Draft) error {
	if draft == nil || draft.Blank() {
		return domain.ErrEmptyAnswer
	}

	release, ok := c.flights.acquire(actionSubmit, questionID)
	if !ok {
		return domain.ErrActionInFlight
	}
	defer release()

	token := c.session.Token()
	if token == "" {
		return c.requireLogin(actionSubmit, questionID, MsgLoginToAnswer)
	}

	submitted := draft.Text()
	answer, err := c.gateway.CreateAnswer(ctx, token, questionID, submitted)
	if err != nil {
		err = classify(err)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return c.requireLogin(actionSubmit, questionID, MsgLoginToAnswer)
		case domain.IsNotFound(err):
			c.shell.Notify(MsgQuestionGone)
			c.refresh(ctx, questionID)
		default:
			c.shell.Notify(MsgAnswerFailed)
		}
		c.logFailure(actionSubmit, questionID, err)
		return err
	}

	c.log.Info().Str("action", string(actionSubmit)).Str("question_id", questionID).Str("answer_id", answer.ID).Msg("answer posted")
	c.refresh(ctx, questionID)
	draft.ClearIf(submitted)
	return nil
}

// CastVote sends a vote intent for answerID and then re-fetches the
// aggregate the answer belongs to. The tally shown afterwards is whatever
// the service returns on that fetch.
func (c *Core) CastVote(ctx context.Context, answerID string, dir domain.VoteDirection) error {
	if !dir.Valid() {
		return domain.ErrInvalidVote
	}

	release, ok := c.flights.acquire(actionVote, answerID)
	if !ok {
		return domain.ErrActionInFlight
	}
	defer release()

	token := c.session.Token()
	if token == "" {
		return c.requireLogin(actionVote, answerID, MsgLoginToVote)
	}

	res, err := c.gateway.Vote(ctx, token, domain.VoteIntent{AnswerID: answerID, Direction: dir})
	if err != nil {
		err = classify(err)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return c.requireLogin(actionVote, answerID, MsgLoginToVote)
		case domain.IsNotFound(err):
			c.shell.Notify(MsgAnswerGone)
			if parent, ok := c.store.ParentOf(answerID); ok {
				c.refresh(ctx, parent)
			}
		default:
			c.shell.Notify(MsgVoteFailed)
		}
		c.logFailure(actionVote, answerID, err)
		return err
	}

	parent := ""
	if res != nil {
		parent = res.Answer.QuestionID
	}
	if parent == "" {
		parent, _ = c.store.ParentOf(answerID)
	}

	c.log.Info().Str("action", string(actionVote)).Str("answer_id", answerID).Str("direction", string(dir)).Msg("vote sent")
	if parent != "" {
		c.refresh(ctx, parent)
	}
	return nil
}

// DeleteQuestion removes questionID after checking ownership and asking the
// shell for confirmation. Authentication, ownership and other failures are
// reported differently; only a confirmed success touches the local snapshot.
func (c *Core) DeleteQuestion(ctx context.Context, questionID string) error {
	release, ok := c.flights.acquire(actionDelete, questionID)
	if !ok {
		return domain.ErrActionInFlight
	}
	defer release()

	sess := c.session.Snapshot()
	if !sess.Authenticated || c.session.Token() == "" {
		return c.requireLogin(actionDelete, questionID, MsgLoginToDelete)
	}

	question, err := c.question(ctx, questionID)
	if err != nil {
		if domain.IsNotFound(err) {
			c.shell.Notify(MsgQuestionGone)
		} else {
			c.shell.Notify(MsgDeleteFailed)
		}
		c.logFailure(actionDelete, questionID, err)
		return err
	}
	if !domain.CanDelete(sess.CurrentUser, question) {
		c.shell.Notify(MsgOwnQuestionOnly)
		return domain.ErrForbidden
	}

	confirmed, err := c.shell.Confirm(ctx, MsgConfirmDelete)
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !confirmed {
		return domain.ErrNotConfirmed
	}

	if err := c.gateway.DeleteQuestion(ctx, c.session.Token(), questionID); err != nil {
		err = classify(err)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return c.requireLogin(actionDelete, questionID, MsgLoginToDelete)
		case errors.Is(err, domain.ErrForbidden):
			c.shell.Notify(MsgOwnQuestionOnly)
		case domain.IsNotFound(err):
			c.store.Evict(questionID)
			c.shell.Notify(MsgQuestionGone)
			c.shell.Navigate(ports.RouteHome)
		default:
			c.shell.Notify(MsgDeleteFailed)
		}
		c.logFailure(actionDelete, questionID, err)
		return err
	}

	c.store.Evict(questionID)
	c.log.Info().Str("action", string(actionDelete)).Str("question_id", questionID).Msg("question deleted")
	c.shell.Notify(MsgDeleted)
	c.shell.Navigate(ports.RouteHome)
	return nil
}

// ListQuestions loads the collection view.
func (c *Core) ListQuestions(ctx context.Context, filter ports.ListQuestionsFilter) ([]*domain.Question, error) {
	qs, err := c.gateway.ListQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", classify(err))
	}
	return qs, nil
}

// AskQuestion posts a new question. Without a session it is posted
// anonymously, which means nobody can delete it from the client later.
func (c *Core) AskQuestion(ctx context.Context, title, description string, tags []string) (*domain.Question, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return nil, domain.ErrInvalidQuestion
	}

	target := strings.ToLower(strings.TrimSpace(title))
	release, ok := c.flights.acquire(actionAsk, target)
	if !ok {
		return nil, domain.ErrActionInFlight
	}
	defer release()

	q, err := c.gateway.CreateQuestion(ctx, c.session.Token(), ports.CreateQuestionInput{
		Title:       title,
		Description: description,
		Tags:        domain.NormalizeTags(tags),
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, c.requireLogin(actionAsk, target, MsgLoginToAsk)
		}
		c.shell.Notify(MsgAskFailed)
		c.logFailure(actionAsk, target, err)
		return nil, err
	}

	c.shell.Navigate(ports.QuestionRoute(q.ID))
	return q, nil
}

// question returns the question from the current snapshot, fetching the
// aggregate when none is held yet.
func (c *Core) question(ctx context.Context, questionID string) (*domain.Question, error) {
	if st, ok := c.store.Get(questionID); ok && st.Aggregate != nil {
		return st.Aggregate.Question, nil
	}
	agg, err := c.FetchAggregate(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return agg.Question, nil
}

func (c *Core) refresh(ctx context.Context, questionID string) {
	if err := c.Invalidate(ctx, questionID); err != nil {
		c.log.Warn().Err(err).Str("question_id", questionID).Msg("refresh after mutation failed")
	}
}

func (c *Core) requireLogin(a action, target, msg string) error {
	c.log.Info().Str("action", string(a)).Str("target", target).Msg("authentication required")
	c.shell.Notify(msg)
	c.shell.Navigate(ports.RouteLogin)
	return domain.ErrUnauthenticated
}

func (c *Core) logFailure(a action, target string, err error) {
	c.log.Warn().Err(err).Str("action", string(a)).Str("target", target).Msg("action failed")
}

// classify folds any error into the taxonomy. Anything that is not an
// authentication, ownership or not-found failure is treated as transient.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrTransient),
		domain.IsNotFound(err):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
}
