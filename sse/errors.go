package sse

import (
	"errors"
	"fmt"
)

var (
	// ErrPending is returned when no item can be produced without waiting
	// for more input.
	ErrPending = errors.New("sse: no item available yet")

	// ErrLineTooLong is the cause of a TransportError raised when a partial
	// line outgrows the configured limit.
	ErrLineTooLong = errors.New("sse: line too long")
)

// FormatError reports a line that is neither blank, a keep-alive, the
// terminator, nor a data line. The stream continues after it.
type FormatError struct {
	Line string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sse: %q: missing %q prefix", e.Line, DataPrefix)
}

// SyntaxError reports a data payload that could not be decoded into the
// target type. The stream continues after it.
type SyntaxError struct {
	Payload string
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sse: decode payload %s: %v", e.Payload, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// TransportError reports a failure of the byte source. It is the last item
// of a stream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sse: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err describes a single malformed event after
// which the stream can still be pulled.
func IsRecoverable(err error) bool {
	var fe *FormatError
	var se *SyntaxError
	return errors.As(err, &fe) || errors.As(err, &se)
}
