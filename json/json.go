// Package json persists conversation sessions as versioned JSON documents.
//
// The on-disk format is decoupled from the API wire format so that either
// can change without breaking the other.
package json
