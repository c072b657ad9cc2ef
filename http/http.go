// Package http implements [deepseek.Service] over the DeepSeek HTTP API.
//
// Streaming endpoints hand the response body to the sse package once the
// status code has been checked, so API errors surface from the call itself
// and never as stream items. Requests that fail before a body is handed
// over are retried with exponential backoff when the failure is transient.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	deepseek "github.com/hunjixin/deepseek-api"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"

	defaultMaxRetries = 2
	defaultRetryWait  = 500 * time.Millisecond

	modelsPath         = "/models"
	balancePath        = "/user/balance"
	chatPath           = "/chat/completions"
	betaChatPath       = "/beta/chat/completions"
	completionsPath    = "/beta/completions"
	maxErrorBodyLength = 64 << 10
)

// ErrTimeout is returned when a response does not arrive within the client
// timeout.
var ErrTimeout = errors.New("deepseek: request timed out")

// apiErrorResponse is the JSON envelope of non-200 responses.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// parseHTTPError turns a non-200 response into a classified APIError.
func parseHTTPError(resp *http.Response) *deepseek.APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
	if err != nil {
		return deepseek.NewAPIError(resp.StatusCode, fmt.Sprintf("failed to read body: %v", err))
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return deepseek.NewAPIError(resp.StatusCode, string(body))
	}
	return deepseek.NewAPIError(resp.StatusCode, apiErr.Error.Message)
}

// retryAfter reads the Retry-After header as seconds or an HTTP date.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
