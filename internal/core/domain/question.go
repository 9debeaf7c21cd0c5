package domain

import (
	"strings"
	"time"
)

// Question is the root of an aggregate. Author is nil for anonymous questions.
type Question struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Author      *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Answer belongs to exactly one question. Votes is owned by the server.
type Answer struct {
	ID         string    `json:"_id"`
	QuestionID string    `json:"question"`
	Text       string    `json:"text"`
	Votes      int       `json:"votes"`
	Author     *User     `json:"user,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Aggregate is a question together with its full ordered answer list. It is
// the unit that gets re-fetched after every mutation.
type Aggregate struct {
	Question *Question
	Answers  []Answer
}

// AnswerCount is always derived from the fetched answers.
func (a *Aggregate) AnswerCount() int {
	if a == nil {
		return 0
	}
	return len(a.Answers)
}

// Owns reports whether answerID is one of the aggregate's answers.
func (a *Aggregate) Owns(answerID string) bool {
	if a == nil {
		return false
	}
	for _, ans := range a.Answers {
		if ans.ID == answerID {
			return true
		}
	}
	return false
}

// CanDelete is the ownership gate: only the recorded author of a question may
// delete it from the client. Anonymous questions are deletable by nobody.
func CanDelete(user *User, q *Question) bool {
	return user != nil && q != nil && q.Author != nil && user.ID != "" && user.ID == q.Author.ID
}

// NormalizeTags trims, lowercases and de-duplicates tags while keeping the
// order in which they were first given.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
