package deepseek

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, items may follow.
	StreamStateComplete                     // Terminator seen or body exhausted.
	StreamStateError                        // A fatal transport error was reported.
	StreamStateClosed                       // Close() called before a terminal state.
)

func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further items can be produced.
func (s StreamState) Terminal() bool {
	return s == StreamStateComplete || s == StreamStateError || s == StreamStateClosed
}

// Stream is a pull-based, forward-only sequence of decoded items read from a
// single streaming response.
//
// Next returns the next item. It returns io.EOF once the sequence has ended,
// either through the terminator sentinel or because the body was exhausted.
// A malformed line or payload is reported as a recoverable error and the
// following call resumes with the next line; callers that want to stop on
// the first malformed event close the stream themselves. A transport failure
// is reported once and every later call returns io.EOF.
//
// Close releases the underlying connection. No bytes are read after Close,
// and Next returns ErrStreamClosed.
type Stream[T any] interface {
	Next() (T, error)
	State() StreamState
	Close() error
}
