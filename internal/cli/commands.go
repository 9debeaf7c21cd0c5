package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odooqa/qa-system/internal/core/domain"
	"github.com/odooqa/qa-system/internal/core/interaction"
	"github.com/odooqa/qa-system/internal/core/ports"
)

// --- Session ---

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt.Secret(cmd.Context(), "Password"); err != nil {
					return err
				}
			}
			u, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s.\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = a.prompt.Secret(cmd.Context(), "Choose a password"); err != nil {
					return err
				}
			}
			u, err := a.session.Register(cmd.Context(), username, email, password)
			if err != nil {
				if errors.Is(err, domain.ErrUserExists) {
					return errors.New("an account with that email already exists")
				}
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s!\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.session.Snapshot()
			if !s.Authenticated {
				fmt.Fprintln(a.out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s>\n", s.CurrentUser.Username, s.CurrentUser.Email)
			return nil
		},
	}
}

// --- Questions ---

func (a *app) listCmd() *cobra.Command {
	var f ports.ListQuestionsFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qs, err := a.core.ListQuestions(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderQuestionList(a.out, qs)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Tag, "tag", "", "only questions with this tag")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "questions per page")
	return cmd
}

func (a *app) askCmd() *cobra.Command {
	var title, description string
	var tags []string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask a question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.core.AskQuestion(cmd.Context(), title, description, tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Question %s posted.\n", q.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "question title")
	cmd.Flags().StringVar(&description, "description", "", "question body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <question-id>",
		Short: "Show a question with its answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, err := a.core.FetchAggregate(cmd.Context(), args[0])
			if err != nil {
				if domain.IsNotFound(err) {
					return errors.New(interaction.MsgQuestionGone)
				}
				return err
			}
			renderAggregate(a.out, agg, a.session.Snapshot().CurrentUser)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <question-id>",
		Short: "Delete one of your questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.shell.setAssumeYes(yes)
			err := a.core.DeleteQuestion(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrNotConfirmed) {
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// --- Answers and votes ---

func (a *app) answerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <question-id> <text...>",
		Short: "Post an answer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qid := args[0]
			draft := interaction.NewDraft(strings.Join(args[1:], " "))

			if err := a.core.SubmitAnswer(cmd.Context(), qid, draft); err != nil {
				if !draft.Blank() {
					fmt.Fprintf(a.out, "Your answer was not posted:\n  %s\n", draft.Text())
				}
				return err
			}
			fmt.Fprintln(a.out, "Answer posted.")
			a.showStored(qid)
			return nil
		},
	}
}

func (a *app) voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "vote <answer-id> <up|down>",
		Short:     "Vote an answer up or down; voting the same way twice takes the vote back",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.VoteUp), string(domain.VoteDown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := domain.ParseVoteDirection(args[1])
			if err != nil {
				return err
			}
			if err := a.core.CastVote(cmd.Context(), args[0], dir); err != nil {
				return err
			}
			if qid, ok := a.core.Store().ParentOf(args[0]); ok {
				a.showStored(qid)
			}
			return nil
		},
	}
}

// showStored renders whatever the last fetch of questionID produced.
func (a *app) showStored(questionID string) {
	st, ok := a.core.Store().Get(questionID)
	if !ok || st.Aggregate == nil {
		return
	}
	fmt.Fprintln(a.out)
	renderAggregate(a.out, st.Aggregate, a.session.Snapshot().CurrentUser)
}
