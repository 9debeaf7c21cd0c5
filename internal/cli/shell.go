package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"

	"github.com/odooqa/qa-system/internal/core/ports"
)

// Prompter asks the user for input on the terminal.
type Prompter interface {
	Confirm(ctx context.Context, title string) (bool, error)
	Secret(ctx context.Context, title string) (string, error)
}

// huhPrompter renders prompts with charmbracelet/huh.
type huhPrompter struct{}

func (huhPrompter) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (huhPrompter) Secret(ctx context.Context, title string) (string, error) {
	var v string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&v),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	return v, nil
}

// terminalShell is the ports.Shell of the command line: messages go to out,
// routes become hints for the next command to run.
type terminalShell struct {
	out      io.Writer
	prompter Prompter

	mu        sync.Mutex
	assumeYes bool
	route     ports.Route
}

var _ ports.Shell = (*terminalShell)(nil)

func newTerminalShell(out io.Writer, p Prompter) *terminalShell {
	return &terminalShell{out: out, prompter: p}
}

func (s *terminalShell) Notify(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *terminalShell) Navigate(r ports.Route) {
	s.mu.Lock()
	s.route = r
	s.mu.Unlock()

	switch {
	case r == ports.RouteLogin:
		fmt.Fprintln(s.out, "Run `qa login` to sign in.")
	case strings.HasPrefix(string(r), "/question/"):
		fmt.Fprintf(s.out, "View it with: qa show %s\n", strings.TrimPrefix(string(r), "/question/"))
	}
}

func (s *terminalShell) Confirm(ctx context.Context, prompt string) (bool, error) {
	s.mu.Lock()
	yes := s.assumeYes
	s.mu.Unlock()
	if yes {
		return true, nil
	}
	return s.prompter.Confirm(ctx, prompt)
}

func (s *terminalShell) setAssumeYes(v bool) {
	s.mu.Lock()
	s.assumeYes = v
	s.mu.Unlock()
}

func (s *terminalShell) lastRoute() ports.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}
