package cli

import (
	"fmt"
	"html"
	"io"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/odooqa/qa-system/internal/core/domain"
)

// Authored content arrives as HTML; the terminal shows it as plain text.
var strict = bluemonday.StrictPolicy()

// plain strips markup, decodes entities and then drops control characters,
// so neither raw nor entity-encoded escape sequences reach the terminal.
func plain(s string) string {
	text := html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(strings.Map(printable, text))
}

func printable(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

func authorName(u *domain.User) string {
	if u == nil || u.Username == "" {
		return "anonymous"
	}
	return plain(u.Username)
}

func renderQuestionList(w io.Writer, qs []*domain.Question) {
	if len(qs) == 0 {
		fmt.Fprintln(w, "No questions yet.")
		return
	}
	for _, q := range qs {
		fmt.Fprintf(w, "%s  %s\n", q.ID, plain(q.Title))
		line := "    by " + authorName(q.Author)
		if !q.CreatedAt.IsZero() {
			line += " · " + q.CreatedAt.Local().Format("2006-01-02")
		}
		if len(q.Tags) > 0 {
			line += " · " + plain(strings.Join(q.Tags, ", "))
		}
		fmt.Fprintln(w, line)
	}
}

func renderAggregate(w io.Writer, agg *domain.Aggregate, viewer *domain.User) {
	q := agg.Question
	fmt.Fprintln(w, plain(q.Title))

	meta := "asked by " + authorName(q.Author)
	if !q.CreatedAt.IsZero() {
		meta += " on " + q.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	if len(q.Tags) > 0 {
		meta += " · tags: " + plain(strings.Join(q.Tags, ", "))
	}
	fmt.Fprintln(w, meta)
	if domain.CanDelete(viewer, q) {
		fmt.Fprintf(w, "(yours: qa delete %s)\n", q.ID)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, plain(q.Description))
	fmt.Fprintln(w)

	n := agg.AnswerCount()
	switch n {
	case 0:
		fmt.Fprintln(w, "No answers yet.")
		return
	case 1:
		fmt.Fprintln(w, "1 answer")
	default:
		fmt.Fprintf(w, "%d answers\n", n)
	}
	for _, a := range agg.Answers {
		fmt.Fprintf(w, "  [%+d] %s · %s\n", a.Votes, a.ID, authorName(a.Author))
		for _, line := range strings.Split(plain(a.Text), "\n") {
			fmt.Fprintf(w, "        %s\n", line)
		}
	}
}
