package interaction

import "sync"

type action string

const (
	actionSubmit action = "submit_answer"
	actionVote   action = "cast_vote"
	actionDelete action = "delete_question"
	actionAsk    action = "ask_question"
)

type flightKey struct {
	action action
	target string
}

// inFlight is a set of (action, target) pairs currently running. acquire
// never waits: a second caller for the same pair is turned away.
type inFlight struct {
	mu      sync.Mutex
	running map[flightKey]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{running: make(map[flightKey]struct{})}
}

func (f *inFlight) acquire(a action, target string) (release func(), ok bool) {
	k := flightKey{action: a, target: target}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.running[k]; busy {
		return nil, false
	}
	f.running[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.running, k)
			f.mu.Unlock()
		})
	}, true
}

func (f *inFlight) busy(a action, target string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.running[flightKey{action: a, target: target}]
	return ok
}
