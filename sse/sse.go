// Package sse decodes the server-sent-events framing used by streaming
// DeepSeek responses into typed items.
//
// The wire format is a small subset of the SSE syntax: "data: <json>" lines
// carry items, "data: [DONE]" ends the logical stream, ": keep-alive"
// comments and blank lines are ignored, and any other line is a format
// violation that is reported but does not end the stream.
//
// Decoding happens in three pure steps: a LineAssembler splits raw chunks
// into lines, Classify maps each line to an Event, and Decode parses data
// payloads. Decoder ties them into one state machine that is driven by
// feeding it chunks. Two adapters supply the chunks: Stream reads an
// io.ReadCloser and blocks the calling goroutine, AsyncStream receives chunks
// from a channel and suspends on a context, or returns ErrPending from
// TryNext when nothing is ready yet. Both produce identical item sequences
// for identical input.
package sse

const (
	// DataPrefix starts every data line.
	DataPrefix = "data: "

	// DoneSentinel ends the logical stream.
	DoneSentinel = "data: [DONE]"

	// KeepAlive is the comment line the service sends while idle.
	KeepAlive = ": keep-alive"

	// DefaultMaxLineSize bounds the pending partial line.
	DefaultMaxLineSize = 1 << 20

	defaultChunkSize = 4096
)
