package interaction

import (
	"sync"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// AggregateState is what the view renders for one question. Exactly one of
// Aggregate and Err is set.
type AggregateState struct {
	Aggregate *domain.Aggregate
	Err       error
	Ticket    uint64
}

type slot struct {
	issued  uint64
	applied uint64
	state   AggregateState
}

// AggregateStore keeps the latest authoritative snapshot per question.
// Every fetch takes a ticket with Begin; Apply drops results whose ticket is
// older than what is already shown, so a slow early response can never
// overwrite a newer one.
type AggregateStore struct {
	mu    sync.Mutex
	slots map[string]*slot

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(string, AggregateState)
}

func NewAggregateStore() *AggregateStore {
	return &AggregateStore{
		slots: make(map[string]*slot),
		subs:  make(map[int]func(string, AggregateState)),
	}
}

// Begin issues the next ticket for questionID.
func (s *AggregateStore) Begin(questionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slotLocked(questionID)
	sl.issued++
	return sl.issued
}

// Apply records the outcome of the fetch identified by ticket. It reports
// false when a newer result has already been applied.
func (s *AggregateStore) Apply(questionID string, ticket uint64, agg *domain.Aggregate, err error) bool {
	s.mu.Lock()
	sl := s.slotLocked(questionID)
	if ticket <= sl.applied {
		s.mu.Unlock()
		return false
	}
	sl.applied = ticket
	if err != nil {
		sl.state = AggregateState{Err: err, Ticket: ticket}
	} else {
		sl.state = AggregateState{Aggregate: agg, Ticket: ticket}
	}
	state := sl.state
	s.mu.Unlock()

	s.publish(questionID, state)
	return true
}

// Get returns the current state of questionID.
func (s *AggregateStore) Get(questionID string) (AggregateState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[questionID]
	if !ok || sl.applied == 0 {
		return AggregateState{}, false
	}
	return sl.state, true
}

// Evict marks questionID as gone. Fetches still in flight for it are
// discarded when they land.
func (s *AggregateStore) Evict(questionID string) {
	s.mu.Lock()
	sl := s.slotLocked(questionID)
	sl.issued++
	sl.applied = sl.issued
	sl.state = AggregateState{Err: domain.ErrQuestionNotFound, Ticket: sl.applied}
	state := sl.state
	s.mu.Unlock()

	s.publish(questionID, state)
}

// ParentOf finds the question whose current snapshot contains answerID.
func (s *AggregateStore) ParentOf(answerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for qid, sl := range s.slots {
		if sl.state.Aggregate.Owns(answerID) {
			return qid, true
		}
	}
	return "", false
}

// Subscribe registers fn to be called after every applied change.
func (s *AggregateStore) Subscribe(fn func(questionID string, state AggregateState)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *AggregateStore) slotLocked(questionID string) *slot {
	sl, ok := s.slots[questionID]
	if !ok {
		sl = &slot{}
		s.slots[questionID] = sl
	}
	return sl
}

func (s *AggregateStore) publish(questionID string, state AggregateState) {
	s.subMu.Lock()
	fns := make([]func(string, AggregateState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(questionID, state)
	}
}
