package ports

import "github.com/odooqa/qa-system/internal/core/domain"

// SessionReader is the read-only face of the session given to the core.
type SessionReader interface {
	Snapshot() domain.Session
	Token() string
	Subscribe(fn func(domain.Session)) (unsubscribe func())
}

// TokenStore persists the bearer credential between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}
