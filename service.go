package deepseek

import "context"

// Service is the DeepSeek API as seen by the command line and the terminal
// UI. Streaming calls return once the response status has been checked; the
// returned Stream owns the response body.
type Service interface {
	Models(ctx context.Context) (ModelList, error)
	Balance(ctx context.Context) (Balance, error)
	Chat(ctx context.Context, req ChatRequest) (ChatCompletion, error)
	ChatStream(ctx context.Context, req ChatRequest) (Stream[ChatCompletionChunk], error)
	FIM(ctx context.Context, req FIMRequest) (FIMCompletion, error)
	FIMStream(ctx context.Context, req FIMRequest) (Stream[FIMCompletion], error)
}
