package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubQuestionRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Question
	seq  int
}

func newStubQuestionRepo() *stubQuestionRepo {
	return &stubQuestionRepo{byID: make(map[string]*domain.Question)}
}

func (r *stubQuestionRepo) Create(_ context.Context, q *domain.Question) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *q
	clone.ID = fmt.Sprintf("q%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubQuestionRepo) FindByID(_ context.Context, id string) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	clone := *q
	return &clone, nil
}

func (r *stubQuestionRepo) List(_ context.Context, f ports.ListQuestionsFilter) ([]*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Question
	for _, q := range r.byID {
		if f.Tag != "" {
			found := false
			for _, t := range q.Tags {
				if t == f.Tag {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		clone := *q
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubQuestionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAnswerRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Answer
	seq    int
	incErr error
}

func newStubAnswerRepo() *stubAnswerRepo {
	return &stubAnswerRepo{byID: make(map[string]*domain.Answer)}
}

func (r *stubAnswerRepo) Create(_ context.Context, a *domain.Answer) (*domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *a
	clone.ID = fmt.Sprintf("a%d", r.seq)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAnswerRepo) FindByID(_ context.Context, id string) (*domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAnswerRepo) ListByQuestion(_ context.Context, qid string) ([]domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Answer
	for _, a := range r.byID {
		if a.QuestionID == qid {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *stubAnswerRepo) IncVotes(_ context.Context, id string, delta int) (*domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return nil, r.incErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	a.Votes += delta
	clone := *a
	return &clone, nil
}

func (r *stubAnswerRepo) DeleteByQuestion(_ context.Context, qid string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, a := range r.byID {
		if a.QuestionID == qid {
			ids = append(ids, id)
			delete(r.byID, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// stubLedger serialises every call like a Redis script would. delay is
// spent inside the critical section to widen race windows.
type stubLedger struct {
	mu        sync.Mutex
	votes     map[string]domain.VoteDirection
	forgotten []string
	delay     time.Duration
}

func newStubLedger() *stubLedger {
	return &stubLedger{votes: make(map[string]domain.VoteDirection)}
}

func (l *stubLedger) Get(_ context.Context, answerID, userID string) (domain.VoteDirection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.votes[answerID+"/"+userID], nil
}

func (l *stubLedger) Toggle(_ context.Context, answerID, userID string, dir domain.VoteDirection) (domain.VoteDirection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	time.Sleep(l.delay)
	key := answerID + "/" + userID
	prev := l.votes[key]
	if prev == dir {
		delete(l.votes, key)
	} else {
		l.votes[key] = dir
	}
	return prev, nil
}

func (l *stubLedger) Revert(_ context.Context, answerID, userID string, from, to domain.VoteDirection) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := answerID + "/" + userID
	if l.votes[key] != from {
		return false, nil
	}
	if to == domain.VoteNone {
		delete(l.votes, key)
	} else {
		l.votes[key] = to
	}
	return true, nil
}

func (l *stubLedger) Forget(_ context.Context, answerIDs ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgotten = append(l.forgotten, answerIDs...)
	return nil
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l stubLimiter) Allow(context.Context, string) (bool, error) { return l.allow, l.err }

type recordingQueue struct {
	mu   sync.Mutex
	jobs []ports.PurgeJob
}

func (q *recordingQueue) Enqueue(job ports.PurgeJob) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
}
