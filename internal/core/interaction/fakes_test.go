package interaction

import (
	"context"
	"sync"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// fakeGateway is an in-memory domain service. Hooks override individual
// calls; counters record how many requests reached it.
type fakeGateway struct {
	mu        sync.Mutex
	questions map[string]*domain.Question
	answers   map[string][]domain.Answer
	users     map[string]*domain.User // token → user

	calls map[string]int

	createAnswerFn   func(ctx context.Context, token, qid, text string) (*domain.Answer, error)
	voteFn           func(ctx context.Context, token string, intent domain.VoteIntent) (*domain.VoteResult, error)
	deleteQuestionFn func(ctx context.Context, token, qid string) error
	getQuestionFn    func(ctx context.Context, qid string) (*domain.Question, error)
	listAnswersFn    func(ctx context.Context, qid string) ([]domain.Answer, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		questions: make(map[string]*domain.Question),
		answers:   make(map[string][]domain.Answer),
		users:     make(map[string]*domain.User),
		calls:     make(map[string]int),
	}
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) hit(name string) {
	g.mu.Lock()
	g.calls[name]++
	g.mu.Unlock()
}

func (g *fakeGateway) seed(q *domain.Question, answers ...domain.Answer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.questions[q.ID] = q
	g.answers[q.ID] = answers
}

func (g *fakeGateway) setVotes(answerID string, votes int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for qid, list := range g.answers {
		for i := range list {
			if list[i].ID == answerID {
				g.answers[qid][i].Votes = votes
			}
		}
	}
}

func (g *fakeGateway) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	g.hit("GetQuestion")
	if g.getQuestionFn != nil {
		return g.getQuestionFn(ctx, id)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	q, ok := g.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	clone := *q
	return &clone, nil
}

func (g *fakeGateway) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	g.hit("ListAnswers")
	if g.listAnswersFn != nil {
		return g.listAnswersFn(ctx, questionID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.questions[questionID]; !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return append([]domain.Answer(nil), g.answers[questionID]...), nil
}

func (g *fakeGateway) ListQuestions(_ context.Context, _ ports.ListQuestionsFilter) ([]*domain.Question, error) {
	g.hit("ListQuestions")
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*domain.Question, 0, len(g.questions))
	for _, q := range g.questions {
		out = append(out, q)
	}
	return out, nil
}

func (g *fakeGateway) CreateQuestion(_ context.Context, token string, in ports.CreateQuestionInput) (*domain.Question, error) {
	g.hit("CreateQuestion")
	g.mu.Lock()
	defer g.mu.Unlock()
	q := &domain.Question{ID: "q-new", Title: in.Title, Description: in.Description, Tags: in.Tags}
	if u, ok := g.users[token]; ok {
		q.Author = u.Public()
	}
	g.questions[q.ID] = q
	return q, nil
}

func (g *fakeGateway) CreateAnswer(ctx context.Context, token, questionID, text string) (*domain.Answer, error) {
	g.hit("CreateAnswer")
	if g.createAnswerFn != nil {
		return g.createAnswerFn(ctx, token, questionID, text)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.users[token]; !ok {
		return nil, domain.ErrUnauthenticated
	}
	a := domain.Answer{ID: "a-" + text, QuestionID: questionID, Text: text}
	g.answers[questionID] = append(g.answers[questionID], a)
	return &a, nil
}

func (g *fakeGateway) Vote(ctx context.Context, token string, intent domain.VoteIntent) (*domain.VoteResult, error) {
	g.hit("Vote")
	if g.voteFn != nil {
		return g.voteFn(ctx, token, intent)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.users[token]; !ok {
		return nil, domain.ErrUnauthenticated
	}
	for qid, list := range g.answers {
		for i := range list {
			if list[i].ID == intent.AnswerID {
				g.answers[qid][i].Votes += intent.Direction.Delta()
				return &domain.VoteResult{Answer: g.answers[qid][i], UserVote: intent.Direction}, nil
			}
		}
	}
	return nil, domain.ErrAnswerNotFound
}

func (g *fakeGateway) DeleteQuestion(ctx context.Context, token, questionID string) error {
	g.hit("DeleteQuestion")
	if g.deleteQuestionFn != nil {
		return g.deleteQuestionFn(ctx, token, questionID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.users[token]
	if !ok {
		return domain.ErrUnauthenticated
	}
	q, ok := g.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if !domain.CanDelete(u, q) {
		return domain.ErrForbidden
	}
	delete(g.questions, questionID)
	delete(g.answers, questionID)
	return nil
}

func (g *fakeGateway) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	g.hit("Login")
	g.mu.Lock()
	defer g.mu.Unlock()
	for token, u := range g.users {
		if u.Email == email {
			return token, u, nil
		}
	}
	return "", nil, domain.ErrInvalidCredentials
}

func (g *fakeGateway) Register(_ context.Context, username, email, _ string) (*domain.User, error) {
	g.hit("Register")
	g.mu.Lock()
	defer g.mu.Unlock()
	u := &domain.User{ID: "u-" + username, Username: username, Email: email}
	g.users["tok-"+username] = u
	return u, nil
}

func (g *fakeGateway) Me(_ context.Context, token string) (*domain.User, error) {
	g.hit("Me")
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.users[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// fakeSession is a fixed SessionReader.
type fakeSession struct {
	user  *domain.User
	token string
}

func (s *fakeSession) Snapshot() domain.Session {
	return domain.Session{CurrentUser: s.user, Authenticated: s.user != nil}
}
func (s *fakeSession) Token() string                          { return s.token }
func (s *fakeSession) Subscribe(func(domain.Session)) func() { return func() {} }

// recordingShell captures what the core showed and where it navigated.
type recordingShell struct {
	mu        sync.Mutex
	messages  []string
	routes    []ports.Route
	confirm   bool
	confirmFn func(ctx context.Context) (bool, error)
	prompts   int
}

func (s *recordingShell) Notify(msg string) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

func (s *recordingShell) Navigate(r ports.Route) {
	s.mu.Lock()
	s.routes = append(s.routes, r)
	s.mu.Unlock()
}

func (s *recordingShell) Confirm(ctx context.Context, _ string) (bool, error) {
	s.mu.Lock()
	s.prompts++
	fn := s.confirmFn
	ok := s.confirm
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return ok, nil
}

func (s *recordingShell) lastRoute() ports.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.routes) == 0 {
		return ""
	}
	return s.routes[len(s.routes)-1]
}

// memoryTokens is an in-memory TokenStore.
type memoryTokens struct {
	token   string
	loadErr error
	cleared int
}

func (m *memoryTokens) Load() (string, error) { return m.token, m.loadErr }
func (m *memoryTokens) Save(t string) error   { m.token = t; return nil }
func (m *memoryTokens) Clear() error          { m.token = ""; m.cleared++; return nil }
