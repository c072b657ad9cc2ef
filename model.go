package deepseek

import "fmt"

// Model identifies a DeepSeek model.
type Model string

const (
	ModelChat     Model = "deepseek-chat"
	ModelReasoner Model = "deepseek-reasoner"
)

// DefaultModel is used when a request leaves Model empty.
const DefaultModel = ModelChat

// ModelInfo describes the published limits and pricing of a model.
// Lengths are in thousands of tokens; prices are CNY per million tokens.
type ModelInfo struct {
	ContextLength   int
	ReasoningLength int // 0 when the model does not produce reasoning.
	OutputLength    int
	CacheHitPrice   float64
	CacheMissPrice  float64
	OutputPrice     float64
}

// Info returns the limits and pricing of m. The second result is false for
// models this package does not know about.
func (m Model) Info() (ModelInfo, bool) {
	switch m {
	case ModelChat:
		return ModelInfo{ContextLength: 64, OutputLength: 8, CacheHitPrice: 0.5, CacheMissPrice: 2, OutputPrice: 8}, true
	case ModelReasoner:
		return ModelInfo{ContextLength: 64, ReasoningLength: 32, OutputLength: 8, CacheHitPrice: 1, CacheMissPrice: 4, OutputPrice: 16}, true
	default:
		return ModelInfo{}, false
	}
}

// Reasoning reports whether the model emits reasoning content.
func (m Model) Reasoning() bool {
	return m == ModelReasoner
}

// Cost returns the price in CNY of the given usage on this model.
func (m Model) Cost(u Usage) float64 {
	info, ok := m.Info()
	if !ok {
		return 0
	}
	const perMillion = 1_000_000
	return (float64(u.PromptCacheHitTokens)*info.CacheHitPrice +
		float64(u.PromptCacheMissTokens)*info.CacheMissPrice +
		float64(u.CompletionTokens)*info.OutputPrice) / perMillion
}

func (i ModelInfo) String() string {
	if i.ReasoningLength > 0 {
		return fmt.Sprintf("context %dK, reasoning %dK, output %dK, input %.1f/%.1f, output %.1f CNY/M",
			i.ContextLength, i.ReasoningLength, i.OutputLength, i.CacheHitPrice, i.CacheMissPrice, i.OutputPrice)
	}
	return fmt.Sprintf("context %dK, output %dK, input %.1f/%.1f, output %.1f CNY/M",
		i.ContextLength, i.OutputLength, i.CacheHitPrice, i.CacheMissPrice, i.OutputPrice)
}
