package domain

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User models an authenticated actor in the system. Only ID and Username are
// exposed to other users; the rest stays on the server.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// Public returns the minimal projection of u that is embedded in questions
// and answers.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Username: u.Username}
}

// IsAdmin reports whether u may act as a privileged backend actor.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session is the client's view of who is signed in.
type Session struct {
	CurrentUser   *User
	Authenticated bool
	Loading       bool
}
