package mock

import (
	"context"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Interface compliance check.
var _ deepseek.Service = (*Service)(nil)

// Service is a test double for deepseek.Service.
// Set the function fields for the methods under test.
type Service struct {
	ModelsFn     func(ctx context.Context) (deepseek.ModelList, error)
	BalanceFn    func(ctx context.Context) (deepseek.Balance, error)
	ChatFn       func(ctx context.Context, req deepseek.ChatRequest) (deepseek.ChatCompletion, error)
	ChatStreamFn func(ctx context.Context, req deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error)
	FIMFn        func(ctx context.Context, req deepseek.FIMRequest) (deepseek.FIMCompletion, error)
	FIMStreamFn  func(ctx context.Context, req deepseek.FIMRequest) (deepseek.Stream[deepseek.FIMCompletion], error)
}

// Models delegates to ModelsFn.
func (s *Service) Models(ctx context.Context) (deepseek.ModelList, error) {
	return s.ModelsFn(ctx)
}

// Balance delegates to BalanceFn.
func (s *Service) Balance(ctx context.Context) (deepseek.Balance, error) {
	return s.BalanceFn(ctx)
}

// Chat delegates to ChatFn.
func (s *Service) Chat(ctx context.Context, req deepseek.ChatRequest) (deepseek.ChatCompletion, error) {
	return s.ChatFn(ctx, req)
}

// ChatStream delegates to ChatStreamFn.
func (s *Service) ChatStream(ctx context.Context, req deepseek.ChatRequest) (deepseek.Stream[deepseek.ChatCompletionChunk], error) {
	return s.ChatStreamFn(ctx, req)
}

// FIM delegates to FIMFn.
func (s *Service) FIM(ctx context.Context, req deepseek.FIMRequest) (deepseek.FIMCompletion, error) {
	return s.FIMFn(ctx, req)
}

// FIMStream delegates to FIMStreamFn.
func (s *Service) FIMStream(ctx context.Context, req deepseek.FIMRequest) (deepseek.Stream[deepseek.FIMCompletion], error) {
	return s.FIMStreamFn(ctx, req)
}
