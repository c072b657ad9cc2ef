// Command ds is a DeepSeek client for the terminal.
//
// Usage:
//
//	DEEPSEEK_API_KEY=sk-... ds chat
//	ds complete "explain SSE in one sentence"
//	ds complete --stream --tools "which files define the decoder?"
//	ds fim --suffix "}" "func add(a, b int) int {"
//	ds models
//	ds balance
//
// Settings are read from config.toml in ~/.config/ds (or --config-dir),
// then DS_* environment variables, then flags.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
