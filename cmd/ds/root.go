package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hunjixin/deepseek-api/config"
	dshttp "github.com/hunjixin/deepseek-api/http"
	"github.com/hunjixin/deepseek-api/logger"
)

const rootLongDesc = `ds talks to the DeepSeek API.

  ds chat        Interactive chat (terminal UI when stdout is a terminal)
  ds complete    One-shot chat completion
  ds fim         Fill-in-the-middle completion
  ds models      List available models
  ds balance     Show account balance`

// app carries the state resolved before any subcommand runs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	closers []io.Closer

	// isTerminal reports whether w is an interactive terminal.
	isTerminal func(w io.Writer) bool
}

func newRootCmd() *cobra.Command {
	a := &app{isTerminal: isTerminal}

	cmd := &cobra.Command{
		Use:          "ds",
		Short:        "DeepSeek API client",
		Long:         rootLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	cmd.PersistentFlags().String("config-dir", "", "directory holding config.toml (default ~/.config/ds)")
	config.AddFlags(cmd.PersistentFlags(), config.AllFlags...)

	cmd.AddCommand(
		newChatCmd(a),
		newCompleteCmd(a),
		newFIMCmd(a),
		newModelsCmd(a),
		newBalanceCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd.Flags(), config.AllFlags...)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := a.newLogger(cmd.ErrOrStderr(), cmd.Name() == "chat" && a.isTerminal(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	a.log = log.With("command", cmd.Name())
	a.log.Debug("configuration loaded", "model", cfg.Model, "base_url", cfg.BaseURL)
	return nil
}

// newLogger builds the console logger and, when a log file is configured,
// a JSON file logger alongside it. The terminal UI owns the screen, so it
// only gets the file logger.
func (a *app) newLogger(stderr io.Writer, tui bool) (*slog.Logger, error) {
	lc := a.cfg.Log
	var file *slog.Logger
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		file = logger.New(logger.WithWriter(f), logger.WithJSON(true), logger.WithDebug(lc.Debug))
	}

	switch {
	case tui && file != nil:
		return file, nil
	case tui:
		return logger.Discard(), nil
	}

	console := logger.New(
		logger.WithWriter(stderr),
		logger.WithDebug(lc.Debug),
		logger.WithJSON(lc.JSON),
		logger.WithPretty(!lc.JSON && a.isTerminal(stderr)),
	)
	if file != nil {
		return logger.Multi(console, file), nil
	}
	return console, nil
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) client() *dshttp.Client {
	return dshttp.New(a.cfg.APIKey,
		dshttp.WithBaseURL(a.cfg.BaseURL),
		dshttp.WithTimeout(a.cfg.Timeout),
		dshttp.WithMaxRetries(a.cfg.MaxRetries),
		dshttp.WithLogger(a.log),
	)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
