package mock

import (
	"io"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Interface compliance check.
var _ deepseek.Stream[deepseek.ChatCompletionChunk] = (*Stream[deepseek.ChatCompletionChunk])(nil)

// Stream is a test double for deepseek.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe (no-op and zero value) because test code commonly calls defer
// stream.Close() and these methods rarely need custom behavior.
type Stream[T any] struct {
	NextFn  func() (T, error)
	StateFn func() deepseek.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream[T]) Next() (T, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream[T]) State() deepseek.StreamState {
	if s.StateFn == nil {
		return deepseek.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream[T]) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// StreamOf returns a Stream that yields items in order and then io.EOF.
func StreamOf[T any](items ...T) *Stream[T] {
	i := 0
	return &Stream[T]{
		NextFn: func() (T, error) {
			if i >= len(items) {
				var zero T
				return zero, io.EOF
			}
			i++
			return items[i-1], nil
		},
	}
}
