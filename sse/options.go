package sse

import "log/slog"

type config struct {
	maxLineSize       int
	stopOnDecodeError bool
	logger            *slog.Logger
}

func newConfig(opts []Option) config {
	c := config{
		maxLineSize: DefaultMaxLineSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Decoder and the adapters built on it.
type Option func(*config)

// WithMaxLineSize bounds the pending partial line. n <= 0 removes the bound.
func WithMaxLineSize(n int) Option {
	return func(c *config) {
		c.maxLineSize = n
	}
}

// WithStopOnDecodeError ends the sequence after the first malformed line or
// payload has been reported. By default decoding continues.
func WithStopOnDecodeError() Option {
	return func(c *config) {
		c.stopOnDecodeError = true
	}
}

// WithLogger sets the logger used for skipped lines and decode failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
