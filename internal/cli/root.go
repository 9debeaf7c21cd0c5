// Package cli is the terminal front end of the Q&A client. Each command is a
// thin shell over the interaction core.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/odooqa/qa-system/internal/core/interaction"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// Env carries the collaborators the commands run against.
type Env struct {
	Gateway ports.QAGateway
	Tokens  ports.TokenStore
	// Prompter defaults to interactive huh prompts.
	Prompter Prompter
	// Out defaults to os.Stdout.
	Out io.Writer
	Log zerolog.Logger
}

type app struct {
	out     io.Writer
	log     zerolog.Logger
	session *interaction.SessionProvider
	shell   *terminalShell
	core    *interaction.Core
	prompt  Prompter
}

func newApp(env Env) *app {
	out := env.Out
	if out == nil {
		out = os.Stdout
	}
	prompter := env.Prompter
	if prompter == nil {
		prompter = huhPrompter{}
	}

	session := interaction.NewSessionProvider(env.Gateway, env.Tokens, env.Log)
	shell := newTerminalShell(out, prompter)
	return &app{
		out:     out,
		log:     env.Log,
		session: session,
		shell:   shell,
		core:    interaction.NewCore(env.Gateway, session, shell, nil, env.Log),
		prompt:  prompter,
	}
}

// NewRootCommand builds the qa command tree.
func NewRootCommand(env Env) *cobra.Command {
	a := newApp(env)

	root := &cobra.Command{
		Use:           "qa",
		Short:         "Ask, answer and vote on questions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// An unreachable service leaves the session signed out; commands
			// that need the network report their own failure.
			if err := a.session.Init(cmd.Context()); err != nil {
				a.log.Warn().Err(err).Msg("could not restore session")
			}
			return nil
		},
	}
	root.SetOut(a.out)

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.askCmd(),
		a.showCmd(),
		a.answerCmd(),
		a.voteCmd(),
		a.deleteCmd(),
	)
	return root
}
