package sse

import "strings"

// Event is a sealed interface over the kinds of line in the stream. Exactly
// one Event is produced per line.
type Event interface {
	event()
}

// EventData carries the raw JSON payload of a data line.
type EventData struct {
	Payload string
}

func (EventData) event() {}

// EventKeepAlive is the ": keep-alive" comment.
type EventKeepAlive struct{}

func (EventKeepAlive) event() {}

// EventBlank is an empty or whitespace-only line.
type EventBlank struct{}

func (EventBlank) event() {}

// EventDone is the "data: [DONE]" sentinel.
type EventDone struct{}

func (EventDone) event() {}

// EventInvalid is a non-blank line that matches none of the above.
type EventInvalid struct {
	Line string
}

func (EventInvalid) event() {}

// Interface compliance checks.
var (
	_ Event = EventData{}
	_ Event = EventKeepAlive{}
	_ Event = EventBlank{}
	_ Event = EventDone{}
	_ Event = EventInvalid{}
)

// Classify maps a line to its Event. Matching is on exact literals after
// trimming surrounding whitespace.
func Classify(line string) Event {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return EventBlank{}
	case line == KeepAlive:
		return EventKeepAlive{}
	case line == DoneSentinel:
		return EventDone{}
	}
	if payload, ok := strings.CutPrefix(line, DataPrefix); ok {
		return EventData{Payload: payload}
	}
	return EventInvalid{Line: line}
}
