package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
)

type fimCommander struct {
	app *app

	suffix string
	stream bool
	echo   bool
	stop   []string
}

func newFIMCmd(a *app) *cobra.Command {
	c := &fimCommander{app: a}

	cmd := &cobra.Command{
		Use:   "fim [prompt...]",
		Short: "Fill-in-the-middle completion (beta, deepseek-chat only)",
		Long: `Complete the text between a prompt and an optional suffix.

The prompt is taken from the arguments, or from stdin when none are given.

Examples:
  ds fim --suffix "    return fib(n-1) + fib(n-2)" "def fib(n):"
  ds fim --stream --stop "\n\n" < partial.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return c.run(cmd, prompt)
		},
	}

	cmd.Flags().StringVar(&c.suffix, "suffix", "", "text that follows the completion")
	cmd.Flags().BoolVarP(&c.stream, "stream", "s", false, "print the completion as it streams")
	cmd.Flags().BoolVar(&c.echo, "echo", false, "include the prompt in the output")
	cmd.Flags().StringSliceVar(&c.stop, "stop", nil, "stop sequence (repeatable, at most 16)")

	return cmd
}

func (c *fimCommander) run(cmd *cobra.Command, prompt string) error {
	out := cmd.OutOrStdout()
	req := deepseek.FIMRequest{
		Model:     deepseek.ModelChat,
		Prompt:    prompt,
		Suffix:    c.suffix,
		Echo:      c.echo,
		MaxTokens: c.app.cfg.MaxTokens,
		Stop:      c.stop,
	}
	client := c.app.client()

	if !c.stream {
		resp, err := client.FIM(cmd.Context(), req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty response")
		}
		fmt.Fprintln(out, resp.Choices[0].Text)
		return nil
	}

	req.IncludeUsage = true
	stream, err := client.FIMStream(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer stream.Close()
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
		for _, ch := range chunk.Choices {
			fmt.Fprint(out, ch.Text)
		}
		if chunk.Usage != nil {
			c.app.log.Debug("usage", "total_tokens", chunk.Usage.TotalTokens)
		}
	}
	fmt.Fprintln(out)
	return nil
}
