package main

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/agent"
	bt "github.com/hunjixin/deepseek-api/bubbletea"
	dsjson "github.com/hunjixin/deepseek-api/json"
)

const chatLongDesc = `Start an interactive chat.

When stdout is a terminal a full-screen UI is used:
  Enter       send
  Tab         expand or collapse the focused reasoning
  Shift+Tab   focus the previous reasoning
  Ctrl+R      toggle deepseek-reasoner
  Ctrl+S      toggle sending input as a system message
  Ctrl+C      cancel the reply, or quit when idle

Otherwise lines are read from stdin and replies streamed to stdout.
"/exit" ends the plain chat; "/system <text>" adds a system message.

The conversation is saved to --session, or to session_dir when set.`

type chatCommander struct {
	app *app

	sessionPath string
	system      string
}

func newChatCmd(a *app) *cobra.Command {
	c := &chatCommander{app: a}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat",
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd)
		},
	}
	cmd.Flags().StringVar(&c.sessionPath, "session", "", "session file to resume and save")
	cmd.Flags().StringVar(&c.system, "system", "", "system message for a new session")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	cfg := c.app.cfg
	session, err := loadSession(c.sessionPath, deepseek.Model(cfg.Model))
	if err != nil {
		return err
	}
	if c.system != "" && len(session.Messages) == 0 {
		session.Append(deepseek.SystemMessage(c.system))
	}

	if c.app.isTerminal(cmd.OutOrStdout()) {
		err = c.runTUI(cmd.Context(), &session)
	} else {
		err = c.runPlain(cmd, &session)
	}
	if err != nil {
		return err
	}
	return c.save(cmd, session)
}

func (c *chatCommander) runTUI(ctx context.Context, session *deepseek.Session) error {
	client := c.app.client()
	chat := bt.AsyncChat(client.ChatStreamAsync, c.app.cfg.MaxTokens)
	if err := bt.Run(ctx, bt.New(chat, session, deepseek.DefaultTheme())); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render("deepseek> ")
)

// runPlain reads one message per line and streams each reply.
func (c *chatCommander) runPlain(cmd *cobra.Command, session *deepseek.Session) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	loop := agent.New(c.app.client(), nil)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "/exit":
			return nil
		case strings.HasPrefix(input, "/system "):
			session.Append(deepseek.SystemMessage(strings.TrimSpace(strings.TrimPrefix(input, "/system "))))
			continue
		}

		session.Append(deepseek.UserMessage(input))
		fmt.Fprint(out, assistantPrompt)
		err := loop.Run(cmd.Context(), session,
			agent.WithMaxTokens(c.app.cfg.MaxTokens),
			agent.WithEventHandler(func(content, _ string) {
				fmt.Fprint(out, content)
			}),
		)
		fmt.Fprintln(out)
		if err != nil {
			if ctxErr := cmd.Context().Err(); ctxErr != nil {
				return ctxErr
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
			c.app.log.Debug("turn failed", "error", err)
		}
	}
}

func (c *chatCommander) save(cmd *cobra.Command, session deepseek.Session) error {
	path := c.sessionPath
	if path == "" && c.app.cfg.SessionDir != "" && len(session.Messages) > 0 {
		path = filepath.Join(c.app.cfg.SessionDir, session.ID+".json")
	}
	if path == "" {
		return nil
	}
	if err := dsjson.Save(path, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Session saved to %s\n", path)
	return nil
}
