package sse

import (
	"io"
	"iter"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Stream decodes items from a reader, blocking the calling goroutine on Read
// whenever the decoder needs more bytes.
type Stream[T any] struct {
	body     io.ReadCloser
	dec      *Decoder[T]
	buf      []byte
	closed   bool
	released bool
}

// Interface compliance check.
var _ deepseek.Stream[struct{}] = (*Stream[struct{}])(nil)

// NewStream returns a Stream that takes ownership of body.
func NewStream[T any](body io.ReadCloser, opts ...Option) *Stream[T] {
	return &Stream[T]{
		body: body,
		dec:  NewDecoder[T](opts...),
		buf:  make([]byte, defaultChunkSize),
	}
}

// Next blocks until an item, an error, or the end of the sequence is
// available.
func (s *Stream[T]) Next() (T, error) {
	if s.closed {
		var zero T
		return zero, deepseek.ErrStreamClosed
	}
	for {
		item, err := s.dec.Next()
		if err != ErrPending {
			if s.dec.State().Terminal() {
				s.release()
			}
			return item, err
		}
		n, rerr := s.body.Read(s.buf)
		if n > 0 {
			s.dec.Feed(s.buf[:n])
		}
		switch {
		case rerr == io.EOF:
			s.dec.Finish()
		case rerr != nil:
			s.dec.Fail(rerr)
		}
	}
}

// State returns the current stream state.
func (s *Stream[T]) State() deepseek.StreamState {
	if s.closed {
		return deepseek.StreamStateClosed
	}
	return s.dec.State()
}

// Close releases the body. Closing a stream that already reached a terminal
// state keeps that state.
func (s *Stream[T]) Close() error {
	if !s.dec.State().Terminal() {
		s.closed = true
	}
	return s.release()
}

// All returns an iterator over the remaining items. Iteration stops at the
// end of the sequence; recoverable errors are yielded and iteration goes on.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(item, err) || err == deepseek.ErrStreamClosed {
				return
			}
		}
	}
}

func (s *Stream[T]) release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.body.Close()
}
