package sse

import (
	"io"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Decoder is the stream state machine shared by both adapters. It owns no
// I/O: the adapter feeds it chunks and reports the end or failure of the
// source, and Next turns the buffered bytes into items.
//
// Next returns ErrPending when it needs another chunk. It never returns
// ErrPending once the source has been finished or failed.
type Decoder[T any] struct {
	lines *LineAssembler
	cfg   config
	state deepseek.StreamState

	exhausted bool  // Finish called
	fatal     error // transport failure not yet reported
}

// NewDecoder returns a Decoder in the New state.
func NewDecoder[T any](opts ...Option) *Decoder[T] {
	cfg := newConfig(opts)
	return &Decoder[T]{
		lines: NewLineAssembler(cfg.maxLineSize),
		cfg:   cfg,
		state: deepseek.StreamStateNew,
	}
}

// Feed hands a chunk to the decoder. Chunks fed after the source has ended
// or after termination are ignored.
func (d *Decoder[T]) Feed(chunk []byte) {
	if d.exhausted || d.fatal != nil || d.state.Terminal() {
		return
	}
	if err := d.lines.Push(chunk); err != nil {
		d.fatal = err
	}
}

// Finish marks the source as exhausted.
func (d *Decoder[T]) Finish() {
	d.exhausted = true
}

// Fail records a transport failure. Complete lines buffered before the
// failure are still delivered; the partial line is discarded.
func (d *Decoder[T]) Fail(err error) {
	if err == nil || d.fatal != nil || d.state.Terminal() {
		return
	}
	d.fatal = err
}

// State returns the current state.
func (d *Decoder[T]) State() deepseek.StreamState {
	return d.state
}

// Next returns the next item or error. See deepseek.Stream for the
// meaning of the returned errors.
func (d *Decoder[T]) Next() (T, error) {
	var zero T
	for {
		if d.state.Terminal() {
			return zero, io.EOF
		}
		line, ok := d.lines.Line()
		if !ok {
			switch {
			case d.fatal != nil:
				d.state = deepseek.StreamStateError
				d.cfg.logger.Debug("sse: transport failure", "error", d.fatal)
				return zero, &TransportError{Err: d.fatal}
			case !d.exhausted:
				return zero, ErrPending
			}
			if line, ok = d.lines.Flush(); !ok {
				d.state = deepseek.StreamStateComplete
				return zero, io.EOF
			}
		}
		d.state = deepseek.StreamStateStreaming

		switch ev := Classify(line).(type) {
		case EventBlank:
			continue
		case EventKeepAlive:
			d.cfg.logger.Debug("sse: keep-alive")
			continue
		case EventDone:
			d.state = deepseek.StreamStateComplete
			return zero, io.EOF
		case EventInvalid:
			return zero, d.recoverable(&FormatError{Line: ev.Line})
		case EventData:
			v, err := Decode[T](ev.Payload)
			if err != nil {
				return zero, d.recoverable(err)
			}
			return v, nil
		}
	}
}

func (d *Decoder[T]) recoverable(err error) error {
	d.cfg.logger.Debug("sse: malformed event", "error", err)
	if d.cfg.stopOnDecodeError {
		d.state = deepseek.StreamStateComplete
	}
	return err
}
