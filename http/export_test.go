package http

// RetryAfter exposes retryAfter to external tests.
var RetryAfter = retryAfter
