package sse

import "bytes"

// LineAssembler buffers raw chunks and yields complete lines regardless of
// where the chunk boundaries fall. Only bytes after the last newline are
// carried over between pulls. The zero value is ready to use and has no
// line size limit.
type LineAssembler struct {
	buf []byte
	max int
}

// NewLineAssembler returns an assembler that refuses to carry over a partial
// line longer than max bytes. max <= 0 disables the limit.
func NewLineAssembler(max int) *LineAssembler {
	return &LineAssembler{max: max}
}

// Push appends a chunk. It returns ErrLineTooLong when the pending partial
// line exceeds the configured limit.
func (a *LineAssembler) Push(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	a.buf = append(a.buf, chunk...)
	if a.max > 0 {
		partial := len(a.buf) - (bytes.LastIndexByte(a.buf, '\n') + 1)
		if partial > a.max {
			return ErrLineTooLong
		}
	}
	return nil
}

// Line pops the next complete line without its "\n" or "\r\n" terminator.
// It reports false when no complete line is buffered.
func (a *LineAssembler) Line() (string, bool) {
	i := bytes.IndexByte(a.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(a.buf[:i], []byte{'\r'}))
	a.buf = a.buf[i+1:]
	if len(a.buf) == 0 {
		a.buf = a.buf[:0:0]
	}
	return line, true
}

// Flush returns the carried-over bytes as a final line once the source is
// exhausted. It reports false when nothing is buffered.
func (a *LineAssembler) Flush() (string, bool) {
	if len(a.buf) == 0 {
		return "", false
	}
	line := string(bytes.TrimSuffix(a.buf, []byte{'\r'}))
	a.buf = nil
	return line, true
}

// Buffered returns the number of bytes not yet returned as lines.
func (a *LineAssembler) Buffered() int {
	return len(a.buf)
}
