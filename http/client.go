package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	deepseek "github.com/hunjixin/deepseek-api"
	"github.com/hunjixin/deepseek-api/sse"
)

// Interface compliance check.
var _ deepseek.Service = (*Client)(nil)

// Client implements [deepseek.Service] for the DeepSeek API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration
	logger     *slog.Logger
	sseOpts    []sse.Option
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request attempt. Non-streaming requests must be
// read in full within d; streaming requests must deliver their response
// headers within d, after which the stream runs as long as the service
// keeps it open. Cancel the request context to stop a stream earlier.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = max(n, 0) }
}

// WithRetryWait sets the initial backoff interval.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// WithLogger sets the logger for requests, retries and stream decoding.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithStopOnDecodeError makes streams end after the first malformed event.
func WithStopOnDecodeError() Option {
	return func(c *Client) { c.sseOpts = append(c.sseOpts, sse.WithStopOnDecodeError()) }
}

// New creates a new DeepSeek [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	c.sseOpts = append(c.sseOpts, sse.WithLogger(c.logger))
	return c
}

// Models lists the models available to the account.
func (c *Client) Models(ctx context.Context) (deepseek.ModelList, error) {
	var out deepseek.ModelList
	err := c.getJSON(ctx, modelsPath, &out)
	return out, err
}

// Balance returns the account balance.
func (c *Client) Balance(ctx context.Context) (deepseek.Balance, error) {
	var out deepseek.Balance
	err := c.getJSON(ctx, balancePath, &out)
	return out, err
}

// Chat sends a non-streaming chat completion.
func (c *Client) Chat(ctx context.Context, req deepseek.ChatRequest) (deepseek.ChatCompletion, error) {
	var out deepseek.ChatCompletion
	if err := req.Validate(); err != nil {
		return out, err
	}
	req.Stream = false
	resp, err := c.post(ctx, chatEndpoint(req), req, false)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("deepseek: decode chat completion: %w", err)
	}
	return out, nil
}

// ChatStream sends a streaming chat completion and returns a blocking
// stream of chunks.
func (c *Client) ChatStream(ctx context.Context, req deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
	resp, err := c.openChat(ctx, req)
	if err != nil {
		return nil, err
	}
	return sse.NewStream[deepseek.ChatCompletionChunk](resp.Body, c.sseOpts...), nil
}

// ChatStreamAsync is ChatStream with a non-blocking stream. The body is read
// on a background goroutine that stops when ctx is done or the stream is
// closed.
func (c *Client) ChatStreamAsync(ctx context.Context, req deepseek.ChatRequest) (*sse.AsyncStream[deepseek.ChatCompletionChunk], error) {
	resp, err := c.openChat(ctx, req)
	if err != nil {
		return nil, err
	}
	return sse.NewAsyncStreamFromBody[deepseek.ChatCompletionChunk](ctx, resp.Body, c.sseOpts...), nil
}

// FIM sends a non-streaming fill-in-the-middle completion.
func (c *Client) FIM(ctx context.Context, req deepseek.FIMRequest) (deepseek.FIMCompletion, error) {
	var out deepseek.FIMCompletion
	if err := req.Validate(); err != nil {
		return out, err
	}
	req.Stream = false
	resp, err := c.post(ctx, completionsPath, req, false)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("deepseek: decode completion: %w", err)
	}
	return out, nil
}

// FIMStream sends a streaming fill-in-the-middle completion.
func (c *Client) FIMStream(ctx context.Context, req deepseek.FIMRequest) (deepseek.Stream[deepseek.FIMCompletion], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Stream = true
	resp, err := c.post(ctx, completionsPath, req, true)
	if err != nil {
		return nil, err
	}
	return sse.NewStream[deepseek.FIMCompletion](resp.Body, c.sseOpts...), nil
}

func (c *Client) openChat(ctx context.Context, req deepseek.ChatRequest) (*http.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Stream = true
	return c.post(ctx, chatEndpoint(req), req, true)
}

// chatEndpoint routes prefix completions to the beta endpoint.
func chatEndpoint(req deepseek.ChatRequest) string {
	if req.HasPrefix() {
		return betaChatPath
	}
	return chatPath
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("deepseek: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, stream bool) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("deepseek: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, data, stream)
}

// do sends the request, retrying transient failures. The returned response
// has status 200 and an unread body.
func (c *Client) do(ctx context.Context, method, path string, body []byte, stream bool) (*http.Response, error) {
	b := &retryBackOff{exp: backoff.NewExponentialBackOff()}
	b.exp.InitialInterval = c.retryWait

	attempt := func() (*http.Response, error) {
		var rd *bytes.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		reqCtx, cancel := context.WithCancelCause(ctx)
		stopTimer := func() bool { return true }
		if c.timeout > 0 {
			stopTimer = time.AfterFunc(c.timeout, func() { cancel(ErrTimeout) }).Stop
		}
		release := func() {
			stopTimer()
			cancel(nil)
		}
		req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, readerOrNil(rd))
		if err != nil {
			release()
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if stream {
			req.Header.Set("Accept", "text/event-stream")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			cause := context.Cause(reqCtx)
			release()
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			if errors.Is(cause, ErrTimeout) {
				return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
			}
			return nil, err
		}
		if stream {
			stopTimer()
		}
		resp.Body = &releasingBody{ReadCloser: resp.Body, release: release}
		c.logger.Debug("deepseek: response", "method", method, "path", path, "status", resp.StatusCode)
		if resp.StatusCode == http.StatusOK {
			return resp, nil
		}
		apiErr := parseHTTPError(resp)
		resp.Body.Close()
		if !apiErr.Retryable() {
			return nil, backoff.Permanent(apiErr)
		}
		b.after = retryAfter(resp.Header, time.Now())
		return nil, apiErr
	}

	resp, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxRetries+1)),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.logger.Debug("deepseek: retrying", "path", path, "error", err, "wait", d)
		}),
	)
	if err != nil {
		var apiErr *deepseek.APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("deepseek: %w", err)
	}
	return resp, nil
}

// releasingBody ends the attempt's context and timer when the body is
// closed.
type releasingBody struct {
	io.ReadCloser
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

// readerOrNil keeps a nil *bytes.Reader from becoming a non-nil io.Reader.
func readerOrNil(r *bytes.Reader) io.Reader {
	if r == nil {
		return nil
	}
	return r
}

// retryBackOff waits at least as long as the last Retry-After header asked.
type retryBackOff struct {
	exp   *backoff.ExponentialBackOff
	after time.Duration
}

func (b *retryBackOff) NextBackOff() time.Duration {
	d := b.exp.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.after > d {
		d = b.after
	}
	b.after = 0
	return d
}

func (b *retryBackOff) Reset() {
	b.exp.Reset()
	b.after = 0
}
