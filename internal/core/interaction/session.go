package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// SessionProvider owns the process-wide session: who is signed in and with
// which bearer token. It is the only writer of that state; the Core reads it
// through ports.SessionReader.
type SessionProvider struct {
	gateway ports.QAGateway
	store   ports.TokenStore
	log     zerolog.Logger

	mu      sync.RWMutex
	session domain.Session
	token   string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(domain.Session)
}

var _ ports.SessionReader = (*SessionProvider)(nil)

func NewSessionProvider(gateway ports.QAGateway, store ports.TokenStore, log zerolog.Logger) *SessionProvider {
	return &SessionProvider{
		gateway: gateway,
		store:   store,
		log:     log,
		session: domain.Session{Loading: true},
		subs:    make(map[int]func(domain.Session)),
	}
}

// Init restores a saved token and resolves the user it belongs to. A token
// the service rejects is discarded; a service that cannot be reached leaves
// the session signed out but keeps the token for the next run.
func (p *SessionProvider) Init(ctx context.Context) error {
	p.set(domain.Session{Loading: true}, "")

	token, err := p.store.Load()
	if err != nil {
		p.set(domain.Session{}, "")
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		p.set(domain.Session{}, "")
		return nil
	}

	user, err := p.gateway.Me(ctx, token)
	if err != nil {
		p.set(domain.Session{}, "")
		if errors.Is(err, domain.ErrUnauthenticated) {
			p.log.Info().Msg("stored token rejected, signing out")
			if clearErr := p.store.Clear(); clearErr != nil {
				p.log.Warn().Err(clearErr).Msg("failed to clear stale token")
			}
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}

	p.set(domain.Session{CurrentUser: user, Authenticated: true}, token)
	return nil
}

// Login authenticates against the service and persists the issued token.
func (p *SessionProvider) Login(ctx context.Context, email, password string) (*domain.User, error) {
	token, user, err := p.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(token); err != nil {
		p.log.Warn().Err(err).Msg("token not persisted, session lasts for this run only")
	}
	p.set(domain.Session{CurrentUser: user, Authenticated: true}, token)
	p.log.Debug().Str("user_id", user.ID).Msg("signed in")
	return user, nil
}

// Register creates an account and signs into it.
func (p *SessionProvider) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if _, err := p.gateway.Register(ctx, username, email, password); err != nil {
		return nil, err
	}
	return p.Login(ctx, email, password)
}

// Logout tears the session down.
func (p *SessionProvider) Logout() error {
	p.set(domain.Session{}, "")
	return p.store.Clear()
}

// Snapshot returns a copy of the current session.
func (p *SessionProvider) Snapshot() domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.session
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		s.CurrentUser = &u
	}
	return s
}

// Token returns the bearer credential, or "" when signed out.
func (p *SessionProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Subscribe registers fn to be called after every session change.
func (p *SessionProvider) Subscribe(fn func(domain.Session)) func() {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subMu.Unlock()

	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

func (p *SessionProvider) set(s domain.Session, token string) {
	p.mu.Lock()
	p.session = s
	p.token = token
	p.mu.Unlock()

	p.subMu.Lock()
	fns := make([]func(domain.Session), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	snap := p.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
