package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/agent"
	"github.com/hunjixin/deepseek-api/fs"
	dsjson "github.com/hunjixin/deepseek-api/json"
	"github.com/hunjixin/deepseek-api/sse"
)

const completeLongDesc = `Send one chat completion and print the reply.

The prompt is taken from the arguments, or from stdin when none are given
or the only argument is "-". Files matching --context globs are attached
to the prompt. With --tools the model may glob and read files below
--root before answering.

Examples:
  ds complete "what is server-sent events?"
  git diff | ds complete --stream --system "review this diff"
  ds complete --prefix '` + "```go" + `' "hello world in Go"
  ds complete --tools --root . "where is the line assembler?"`

type completeCommander struct {
	app *app

	stream        bool
	tools         bool
	root          string
	system        string
	prefix        string
	sessionPath   string
	showReasoning bool
	jsonOutput    bool
	temperature   float64
}

func newCompleteCmd(a *app) *cobra.Command {
	c := &completeCommander{app: a}

	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: "One-shot chat completion",
		Long:  completeLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.tools && c.prefix != "" {
				return errors.New("--prefix cannot be combined with --tools")
			}
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return c.run(cmd, prompt)
		},
	}

	cmd.Flags().BoolVarP(&c.stream, "stream", "s", false, "print the reply as it streams")
	cmd.Flags().BoolVar(&c.tools, "tools", false, "let the model glob and read files below --root")
	cmd.Flags().StringVar(&c.root, "root", ".", "directory for --tools and --context")
	cmd.Flags().StringVar(&c.system, "system", "", "system message sent before the prompt")
	cmd.Flags().StringVar(&c.prefix, "prefix", "", "assistant prefix the reply must continue from (beta)")
	cmd.Flags().StringVar(&c.sessionPath, "session", "", "session file to continue and save")
	cmd.Flags().BoolVar(&c.showReasoning, "show-reasoning", false, "print reasoner output to stderr")
	cmd.Flags().BoolVar(&c.jsonOutput, "json", false, "request a JSON object reply")
	cmd.Flags().Float64Var(&c.temperature, "temperature", 1, "sampling temperature")

	return cmd
}

func (c *completeCommander) run(cmd *cobra.Command, prompt string) error {
	cfg := c.app.cfg
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	session, err := loadSession(c.sessionPath, deepseek.Model(cfg.Model))
	if err != nil {
		return err
	}
	if c.system != "" {
		session.Append(deepseek.SystemMessage(c.system))
	}
	if len(cfg.ContextGlob) > 0 {
		files, err := fs.Collect(c.root, cfg.ContextGlob...)
		if err != nil {
			return err
		}
		prompt = files + "\n" + prompt
	}
	session.Append(deepseek.UserMessage(prompt))

	var temperature *float64
	if cmd.Flags().Changed("temperature") {
		temperature = &c.temperature
	}

	onDelta := func(content, reasoning string) {
		if c.stream {
			fmt.Fprint(out, content)
		}
		if c.showReasoning && reasoning != "" {
			fmt.Fprint(errOut, reasoning)
		}
	}

	before := len(session.Messages)
	if c.tools {
		err = c.runTools(cmd, &session, temperature, onDelta)
	} else {
		err = c.runChat(cmd, &session, temperature, onDelta)
	}
	if err != nil {
		return err
	}

	if !c.stream {
		reply := session.Messages[len(session.Messages)-1]
		fmt.Fprint(out, reply.Content)
	}
	fmt.Fprintln(out)

	c.app.log.Debug("completion finished",
		"messages", len(session.Messages)-before,
		"total_tokens", session.Usage.TotalTokens,
		"cost_cny", session.Model.Cost(session.Usage),
	)
	if c.sessionPath != "" {
		return dsjson.Save(c.sessionPath, session)
	}
	return nil
}

// runTools drives the tool-calling loop. It always streams; deltas are only
// printed with --stream.
func (c *completeCommander) runTools(cmd *cobra.Command, session *deepseek.Session, temperature *float64, onDelta func(string, string)) error {
	exec, err := fs.NewExecutor(c.root)
	if err != nil {
		return err
	}
	defer exec.Close()

	opts := []agent.RunOption{
		agent.WithEventHandler(onDelta),
		agent.WithMaxTokens(c.app.cfg.MaxTokens),
		agent.WithToolHandler(func(call deepseek.ToolCall, result deepseek.ToolResult) {
			c.app.log.Debug("tool call", "name", call.Function.Name, "arguments", call.Function.Arguments, "error", result.IsError)
		}),
		agent.WithSkippedHandler(func(err error) {
			c.app.log.Debug("skipped malformed event", "error", err)
		}),
	}
	if temperature != nil {
		opts = append(opts, agent.WithTemperature(*temperature))
	}
	return agent.New(c.app.client(), exec).Run(cmd.Context(), session, opts...)
}

// runChat sends a single request, streaming when asked. A --prefix is sent
// as the final assistant message and folded into the saved reply.
func (c *completeCommander) runChat(cmd *cobra.Command, session *deepseek.Session, temperature *float64, onDelta func(string, string)) error {
	msgs := session.Messages
	if c.prefix != "" {
		msgs = append(msgs[:len(msgs):len(msgs)], deepseek.PrefixMessage(c.prefix))
		if c.stream {
			fmt.Fprint(cmd.OutOrStdout(), c.prefix)
		}
	}
	req := deepseek.ChatRequest{
		Model:        session.Model,
		Messages:     msgs,
		MaxTokens:    c.app.cfg.MaxTokens,
		Temperature:  temperature,
		IncludeUsage: true,
	}
	if c.jsonOutput {
		req.ResponseFormat = deepseek.ResponseFormatJSON
	}

	client := c.app.client()
	var reply deepseek.Message
	var usage deepseek.Usage
	if c.stream {
		stream, err := client.ChatStream(cmd.Context(), req)
		if err != nil {
			return err
		}
		defer stream.Close()

		var acc deepseek.Accumulator
		for {
			chunk, err := stream.Next()
			if err == io.EOF {
				break
			}
			if sse.IsRecoverable(err) {
				c.app.log.Debug("skipped malformed event", "error", err)
				continue
			}
			if err != nil {
				return err
			}
			onDelta(acc.Add(chunk))
		}
		reply, usage = acc.Message(), acc.Usage()
	} else {
		resp, err := client.Chat(cmd.Context(), req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty response")
		}
		reply = resp.Choices[0].Message
		if resp.Usage != nil {
			usage = *resp.Usage
		}
		if c.showReasoning && reply.ReasoningContent != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), reply.ReasoningContent)
		}
	}

	reply.Content = c.prefix + reply.Content
	session.Append(reply)
	session.Usage = session.Usage.Add(usage)
	return nil
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("empty prompt")
	}
	return prompt, nil
}

// loadSession loads path when it exists and starts a new session otherwise.
func loadSession(path string, model deepseek.Model) (deepseek.Session, error) {
	if path != "" {
		s, err := dsjson.Load(path)
		if err == nil {
			s.Model = model
			return s, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return deepseek.Session{}, fmt.Errorf("load session: %w", err)
		}
	}
	return deepseek.NewSession(model), nil
}
