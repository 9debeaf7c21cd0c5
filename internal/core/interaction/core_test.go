package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

var (
	alice = &domain.User{ID: "u-alice", Username: "alice", Email: "alice@example.com"}
	bob   = &domain.User{ID: "u-bob", Username: "bob", Email: "bob@example.com"}
)

type harness struct {
	gw    *fakeGateway
	shell *recordingShell
	core  *Core
}

// newHarness seeds Q1 (owned by alice) with A1 at two votes and signs in as
// user. A nil user means signed out.
func newHarness(t *testing.T, user *domain.User) *harness {
	t.Helper()
	gw := newFakeGateway()
	gw.users["tok-alice"] = alice
	gw.users["tok-bob"] = bob
	gw.seed(&domain.Question{ID: "Q1", Title: "How?", Author: alice.Public()},
		domain.Answer{ID: "A1", QuestionID: "Q1", Text: "like this", Votes: 2})

	sess := &fakeSession{}
	if user != nil {
		sess.user = user
		sess.token = "tok-" + user.Username
	}
	shell := &recordingShell{confirm: true}
	return &harness{gw: gw, shell: shell, core: NewCore(gw, sess, shell, nil, zerolog.Nop())}
}

func (h *harness) votesOf(t *testing.T, qid, aid string) int {
	t.Helper()
	st, ok := h.core.Store().Get(qid)
	require.True(t, ok, "no snapshot for %s", qid)
	require.NoError(t, st.Err)
	for _, a := range st.Aggregate.Answers {
		if a.ID == aid {
			return a.Votes
		}
	}
	t.Fatalf("answer %s not in snapshot", aid)
	return 0
}

// ---------------------------------------------------------------------------
// FetchAggregate
// ---------------------------------------------------------------------------

func TestFetchAggregate_CombinesQuestionAndAnswers(t *testing.T) {
	h := newHarness(t, nil)

	agg, err := h.core.FetchAggregate(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Equal(t, "How?", agg.Question.Title)
	assert.Equal(t, 1, agg.AnswerCount())
	assert.Equal(t, 1, h.gw.count("GetQuestion"))
	assert.Equal(t, 1, h.gw.count("ListAnswers"))
}

func TestFetchAggregate_DropsAnswersOfOtherQuestions(t *testing.T) {
	h := newHarness(t, nil)
	h.gw.listAnswersFn = func(context.Context, string) ([]domain.Answer, error) {
		return []domain.Answer{
			{ID: "A1", QuestionID: "Q1"},
			{ID: "A9", QuestionID: "Q9"},
			{ID: "A2"},
		}, nil
	}

	agg, err := h.core.FetchAggregate(context.Background(), "Q1")
	require.NoError(t, err)
	require.Equal(t, 2, agg.AnswerCount())
	assert.Equal(t, "Q1", agg.Answers[1].QuestionID)
}

func TestFetchAggregate_PartialFailureIsUnavailable(t *testing.T) {
	h := newHarness(t, nil)
	h.gw.listAnswersFn = func(context.Context, string) ([]domain.Answer, error) {
		return nil, errors.New("connection reset")
	}

	agg, err := h.core.FetchAggregate(context.Background(), "Q1")
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, domain.ErrTransient)

	st, ok := h.core.Store().Get("Q1")
	require.True(t, ok)
	assert.Nil(t, st.Aggregate, "a half-loaded aggregate must never be shown")
	assert.ErrorIs(t, st.Err, domain.ErrTransient)
}

func TestFetchAggregate_NotFound(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.core.FetchAggregate(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	st, ok := h.core.Store().Get("nope")
	require.True(t, ok)
	assert.ErrorIs(t, st.Err, domain.ErrQuestionNotFound)
}

func TestFetchAggregate_LaterFetchSupersedesEarlier(t *testing.T) {
	h := newHarness(t, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	h.gw.listAnswersFn = func(ctx context.Context, _ string) ([]domain.Answer, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []domain.Answer{{ID: "A1", QuestionID: "Q1", Votes: 2}}, nil
		}
		return []domain.Answer{{ID: "A1", QuestionID: "Q1", Votes: 3}}, nil
	}

	type result struct {
		agg *domain.Aggregate
		err error
	}
	slow := make(chan result, 1)
	go func() {
		agg, err := h.core.FetchAggregate(context.Background(), "Q1")
		slow <- result{agg, err}
	}()

	<-started
	_, err := h.core.FetchAggregate(context.Background(), "Q1")
	require.NoError(t, err)
	require.Equal(t, 3, h.votesOf(t, "Q1", "A1"))

	close(release)
	select {
	case r := <-slow:
		require.NoError(t, r.err)
		assert.Equal(t, 3, r.agg.Answers[0].Votes, "stale fetch must report the newer snapshot")
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch never returned")
	}
	assert.Equal(t, 3, h.votesOf(t, "Q1", "A1"))
}

// ---------------------------------------------------------------------------
// CastVote
// ---------------------------------------------------------------------------

func TestCastVote_ShowsServerTallyWithoutDoubleCounting(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)
	require.Equal(t, 2, h.votesOf(t, "Q1", "A1"))

	require.NoError(t, h.core.CastVote(ctx, "A1", domain.VoteUp))

	assert.Equal(t, 3, h.votesOf(t, "Q1", "A1"))
	assert.Equal(t, 1, h.gw.count("Vote"))
	assert.Equal(t, 2, h.gw.count("ListAnswers"), "vote must be followed by a full refetch")
}

func TestCastVote_ServerSuppressedVoteLeavesTallyAlone(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	// Duplicate vote: the service accepts the request but keeps the tally.
	h.gw.voteFn = func(_ context.Context, _ string, intent domain.VoteIntent) (*domain.VoteResult, error) {
		return &domain.VoteResult{Answer: domain.Answer{ID: intent.AnswerID, QuestionID: "Q1", Votes: 2}}, nil
	}
	require.NoError(t, h.core.CastVote(ctx, "A1", domain.VoteUp))
	assert.Equal(t, 2, h.votesOf(t, "Q1", "A1"))
}

func TestCastVote_FindsParentFromSnapshotWhenResultHasNone(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	h.gw.voteFn = func(context.Context, string, domain.VoteIntent) (*domain.VoteResult, error) {
		h.gw.setVotes("A1", 7)
		return &domain.VoteResult{}, nil
	}
	require.NoError(t, h.core.CastVote(ctx, "A1", domain.VoteUp))
	assert.Equal(t, 7, h.votesOf(t, "Q1", "A1"))
}

func TestCastVote_SignedOutRedirectsWithoutRequest(t *testing.T) {
	h := newHarness(t, nil)

	err := h.core.CastVote(context.Background(), "A1", domain.VoteDown)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Zero(t, h.gw.count("Vote"))
	assert.Equal(t, []string{MsgLoginToVote}, h.shell.messages)
	assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
}

func TestCastVote_ExpiredTokenRedirectsAndKeepsTally(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	h.gw.voteFn = func(context.Context, string, domain.VoteIntent) (*domain.VoteResult, error) {
		return nil, domain.ErrUnauthenticated
	}
	err = h.core.CastVote(ctx, "A1", domain.VoteUp)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
	assert.Equal(t, 2, h.votesOf(t, "Q1", "A1"))
	assert.Equal(t, 1, h.gw.count("ListAnswers"), "failed vote must not refetch")
}

func TestCastVote_InvalidDirection(t *testing.T) {
	h := newHarness(t, bob)
	err := h.core.CastVote(context.Background(), "A1", domain.VoteDirection("sideways"))
	assert.ErrorIs(t, err, domain.ErrInvalidVote)
	assert.Zero(t, h.gw.count("Vote"))
}

func TestCastVote_TransientFailureAllowsRetry(t *testing.T) {
	h := newHarness(t, bob)
	fail := true
	h.gw.voteFn = func(_ context.Context, _ string, intent domain.VoteIntent) (*domain.VoteResult, error) {
		if fail {
			fail = false
			return nil, errors.New("503")
		}
		return &domain.VoteResult{Answer: domain.Answer{ID: intent.AnswerID, QuestionID: "Q1"}}, nil
	}

	err := h.core.CastVote(context.Background(), "A1", domain.VoteUp)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, []string{MsgVoteFailed}, h.shell.messages)
	assert.False(t, h.core.Voting("A1"))

	require.NoError(t, h.core.CastVote(context.Background(), "A1", domain.VoteUp))
}

func TestCastVote_ReentryOnSameAnswerIsRejected(t *testing.T) {
	h := newHarness(t, bob)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.gw.voteFn = func(_ context.Context, _ string, intent domain.VoteIntent) (*domain.VoteResult, error) {
		if intent.AnswerID == "A1" {
			close(entered)
			<-release
		}
		return &domain.VoteResult{Answer: domain.Answer{ID: intent.AnswerID, QuestionID: "Q1"}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.core.CastVote(context.Background(), "A1", domain.VoteUp) }()
	<-entered

	assert.True(t, h.core.Voting("A1"))
	assert.ErrorIs(t, h.core.CastVote(context.Background(), "A1", domain.VoteUp), domain.ErrActionInFlight)
	assert.ErrorIs(t, h.core.CastVote(context.Background(), "A1", domain.VoteDown), domain.ErrActionInFlight)
	assert.NoError(t, h.core.CastVote(context.Background(), "A2", domain.VoteUp), "other targets are independent")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, h.gw.count("Vote"))
	assert.False(t, h.core.Voting("A1"))
}

// ---------------------------------------------------------------------------
// SubmitAnswer
// ---------------------------------------------------------------------------

func TestSubmitAnswer_BlankDraftIssuesNoRequest(t *testing.T) {
	h := newHarness(t, bob)
	for _, text := range []string{"", "   ", "\n\t "} {
		err := h.core.SubmitAnswer(context.Background(), "Q1", NewDraft(text))
		assert.ErrorIs(t, err, domain.ErrEmptyAnswer)
	}
	assert.ErrorIs(t, h.core.SubmitAnswer(context.Background(), "Q1", nil), domain.ErrEmptyAnswer)
	assert.Zero(t, h.gw.count("CreateAnswer"))
}

func TestSubmitAnswer_SuccessClearsDraftAndRefreshesCount(t *testing.T) {
	h := newHarness(t, bob)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	draft := NewDraft("<p>use a mutex</p>")
	require.NoError(t, h.core.SubmitAnswer(ctx, "Q1", draft))

	assert.Equal(t, "", draft.Text())
	st, _ := h.core.Store().Get("Q1")
	assert.Equal(t, 2, st.Aggregate.AnswerCount())
	assert.Equal(t, 2, h.gw.count("GetQuestion"))
}

func TestSubmitAnswer_EditsDuringRequestSurvive(t *testing.T) {
	h := newHarness(t, bob)
	draft := NewDraft("first answer")
	h.gw.createAnswerFn = func(_ context.Context, _, qid, text string) (*domain.Answer, error) {
		assert.Equal(t, "first answer", text)
		draft.Set("follow-up typed while posting")
		return &domain.Answer{ID: "A2", QuestionID: qid, Text: text}, nil
	}

	require.NoError(t, h.core.SubmitAnswer(context.Background(), "Q1", draft))
	assert.Equal(t, "follow-up typed while posting", draft.Text())
}

func TestSubmitAnswer_CountComesFromServerNotLocalIncrement(t *testing.T) {
	h := newHarness(t, bob)
	// The service accepts the answer but holds it for moderation, so the
	// refetched list does not contain it.
	h.gw.createAnswerFn = func(_ context.Context, _, qid, text string) (*domain.Answer, error) {
		return &domain.Answer{ID: "pending", QuestionID: qid, Text: text}, nil
	}
	require.NoError(t, h.core.SubmitAnswer(context.Background(), "Q1", NewDraft("held")))

	st, _ := h.core.Store().Get("Q1")
	assert.Equal(t, 1, st.Aggregate.AnswerCount())
}

func TestSubmitAnswer_UnauthenticatedPreservesDraft(t *testing.T) {
	const typed = "  <p>half written <b>thought</b></p>\n"

	t.Run("signed out", func(t *testing.T) {
		h := newHarness(t, nil)
		draft := NewDraft(typed)

		err := h.core.SubmitAnswer(context.Background(), "Q1", draft)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, typed, draft.Text())
		assert.Zero(t, h.gw.count("CreateAnswer"))
		assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
		assert.Equal(t, []string{MsgLoginToAnswer}, h.shell.messages)
	})

	t.Run("token rejected", func(t *testing.T) {
		h := newHarness(t, bob)
		h.gw.createAnswerFn = func(context.Context, string, string, string) (*domain.Answer, error) {
			return nil, domain.ErrUnauthenticated
		}
		draft := NewDraft(typed)

		err := h.core.SubmitAnswer(context.Background(), "Q1", draft)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, typed, draft.Text())
		assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
	})
}

func TestSubmitAnswer_TransientFailureKeepsDraft(t *testing.T) {
	h := newHarness(t, bob)
	h.gw.createAnswerFn = func(context.Context, string, string, string) (*domain.Answer, error) {
		return nil, errors.New("timeout")
	}
	draft := NewDraft("retry me")

	err := h.core.SubmitAnswer(context.Background(), "Q1", draft)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, "retry me", draft.Text())
	assert.Equal(t, []string{MsgAnswerFailed}, h.shell.messages)
	assert.Empty(t, h.shell.routes)
	assert.False(t, h.core.Submitting("Q1"))
}

func TestSubmitAnswer_ReentryIsRejected(t *testing.T) {
	h := newHarness(t, bob)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.gw.createAnswerFn = func(_ context.Context, _, qid, text string) (*domain.Answer, error) {
		close(entered)
		<-release
		return &domain.Answer{ID: "A2", QuestionID: qid, Text: text}, nil
	}

	draft := NewDraft("once")
	done := make(chan error, 1)
	go func() { done <- h.core.SubmitAnswer(context.Background(), "Q1", draft) }()
	<-entered

	assert.ErrorIs(t, h.core.SubmitAnswer(context.Background(), "Q1", draft), domain.ErrActionInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.gw.count("CreateAnswer"))
}

// ---------------------------------------------------------------------------
// DeleteQuestion
// ---------------------------------------------------------------------------

func TestDeleteQuestion_OwnerConfirmed(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	require.NoError(t, h.core.DeleteQuestion(ctx, "Q1"))

	assert.Equal(t, 1, h.shell.prompts)
	assert.Equal(t, []string{MsgDeleted}, h.shell.messages)
	assert.Equal(t, ports.RouteHome, h.shell.lastRoute())

	st, ok := h.core.Store().Get("Q1")
	require.True(t, ok)
	assert.ErrorIs(t, st.Err, domain.ErrQuestionNotFound)

	_, err = h.core.FetchAggregate(ctx, "Q1")
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestDeleteQuestion_FetchesQuestionWhenNoSnapshotHeld(t *testing.T) {
	h := newHarness(t, alice)
	require.NoError(t, h.core.DeleteQuestion(context.Background(), "Q1"))
	assert.Equal(t, 1, h.gw.count("GetQuestion"))
	assert.Equal(t, 1, h.gw.count("DeleteQuestion"))
}

func TestDeleteQuestion_DeclinedConfirmationSendsNothing(t *testing.T) {
	h := newHarness(t, alice)
	h.shell.confirm = false

	err := h.core.DeleteQuestion(context.Background(), "Q1")
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	assert.Zero(t, h.gw.count("DeleteQuestion"))
	assert.False(t, h.core.Deleting("Q1"))
}

func TestDeleteQuestion_NonOwnerIsGatedLocally(t *testing.T) {
	h := newHarness(t, bob)

	err := h.core.DeleteQuestion(context.Background(), "Q1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, h.shell.prompts)
	assert.Zero(t, h.gw.count("DeleteQuestion"))
	assert.Equal(t, []string{MsgOwnQuestionOnly}, h.shell.messages)
	assert.Empty(t, h.shell.routes)
}

func TestDeleteQuestion_AnonymousQuestionIsNotDeletable(t *testing.T) {
	h := newHarness(t, alice)
	h.gw.seed(&domain.Question{ID: "Q2", Title: "anon"})

	err := h.core.DeleteQuestion(context.Background(), "Q2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, h.gw.count("DeleteQuestion"))
}

func TestDeleteQuestion_SignedOutRedirectsToLogin(t *testing.T) {
	h := newHarness(t, nil)

	err := h.core.DeleteQuestion(context.Background(), "Q1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
	assert.Zero(t, h.gw.count("DeleteQuestion"))
}

func TestDeleteQuestion_ServerForbiddenLeavesQuestionRetrievable(t *testing.T) {
	h := newHarness(t, alice)
	ctx := context.Background()
	_, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)

	h.gw.deleteQuestionFn = func(context.Context, string, string) error { return domain.ErrForbidden }

	err = h.core.DeleteQuestion(ctx, "Q1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, []string{MsgOwnQuestionOnly}, h.shell.messages)
	assert.Empty(t, h.shell.routes, "forbidden must not redirect")

	st, ok := h.core.Store().Get("Q1")
	require.True(t, ok)
	require.NoError(t, st.Err)
	assert.Equal(t, "Q1", st.Aggregate.Question.ID)

	agg, err := h.core.FetchAggregate(ctx, "Q1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", agg.Question.ID)
}

func TestDeleteQuestion_ServerUnauthenticatedRedirects(t *testing.T) {
	h := newHarness(t, alice)
	h.gw.deleteQuestionFn = func(context.Context, string, string) error { return domain.ErrUnauthenticated }

	err := h.core.DeleteQuestion(context.Background(), "Q1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, []string{MsgLoginToDelete}, h.shell.messages)
	assert.Equal(t, ports.RouteLogin, h.shell.lastRoute())
}

func TestDeleteQuestion_OtherFailureIsRetryable(t *testing.T) {
	h := newHarness(t, alice)
	calls := 0
	h.gw.deleteQuestionFn = func(context.Context, string, string) error {
		calls++
		if calls == 1 {
			return errors.New("500 internal")
		}
		return nil
	}

	err := h.core.DeleteQuestion(context.Background(), "Q1")
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, []string{MsgDeleteFailed}, h.shell.messages)
	assert.Empty(t, h.shell.routes)

	require.NoError(t, h.core.DeleteQuestion(context.Background(), "Q1"))
	assert.Equal(t, ports.RouteHome, h.shell.lastRoute())
}

func TestDeleteQuestion_ReentryProducesOneRequest(t *testing.T) {
	h := newHarness(t, alice)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.gw.deleteQuestionFn = func(context.Context, string, string) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- h.core.DeleteQuestion(context.Background(), "Q1") }()
	<-entered

	assert.True(t, h.core.Deleting("Q1"))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, h.core.DeleteQuestion(context.Background(), "Q1"), domain.ErrActionInFlight)
	}
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, h.gw.count("DeleteQuestion"))
	assert.Equal(t, 1, h.shell.prompts)
}

// ---------------------------------------------------------------------------
// AskQuestion / ListQuestions
// ---------------------------------------------------------------------------

func TestAskQuestion(t *testing.T) {
	t.Run("authored", func(t *testing.T) {
		h := newHarness(t, alice)
		q, err := h.core.AskQuestion(context.Background(), "Title", "<p>body</p>", []string{"Go", "go", " sql "})
		require.NoError(t, err)
		require.NotNil(t, q.Author)
		assert.Equal(t, alice.ID, q.Author.ID)
		assert.Equal(t, []string{"go", "sql"}, q.Tags)
		assert.Equal(t, ports.QuestionRoute(q.ID), h.shell.lastRoute())
	})

	t.Run("anonymous", func(t *testing.T) {
		h := newHarness(t, nil)
		q, err := h.core.AskQuestion(context.Background(), "Title", "body", nil)
		require.NoError(t, err)
		assert.Nil(t, q.Author)
	})

	t.Run("blank title", func(t *testing.T) {
		h := newHarness(t, alice)
		_, err := h.core.AskQuestion(context.Background(), "  ", "body", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidQuestion)
		assert.Zero(t, h.gw.count("CreateQuestion"))
	})
}

func TestListQuestions(t *testing.T) {
	h := newHarness(t, nil)
	qs, err := h.core.ListQuestions(context.Background(), ports.ListQuestionsFilter{})
	require.NoError(t, err)
	assert.Len(t, qs, 1)
}
