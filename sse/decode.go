package sse

import "encoding/json"

// Decode parses a data payload into T. A failure is returned as a
// *SyntaxError carrying the payload.
func Decode[T any](payload string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		var zero T
		return zero, &SyntaxError{Payload: payload, Err: err}
	}
	return v, nil
}
