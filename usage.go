package deepseek

// Usage tracks token consumption as reported by the service.
//
//	PromptTokens = PromptCacheHitTokens + PromptCacheMissTokens
//	TotalTokens  = PromptTokens + CompletionTokens
type Usage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	TotalTokens             int                      `json:"total_tokens"`
	PromptCacheHitTokens    int                      `json:"prompt_cache_hit_tokens"`
	PromptCacheMissTokens   int                      `json:"prompt_cache_miss_tokens"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

// CompletionTokensDetails breaks down completion tokens.
type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// ReasoningTokens returns the share of CompletionTokens spent on reasoning.
func (u Usage) ReasoningTokens() int {
	if u.CompletionTokensDetails == nil {
		return 0
	}
	return u.CompletionTokensDetails.ReasoningTokens
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	sum := Usage{
		PromptTokens:          u.PromptTokens + o.PromptTokens,
		CompletionTokens:      u.CompletionTokens + o.CompletionTokens,
		TotalTokens:           u.TotalTokens + o.TotalTokens,
		PromptCacheHitTokens:  u.PromptCacheHitTokens + o.PromptCacheHitTokens,
		PromptCacheMissTokens: u.PromptCacheMissTokens + o.PromptCacheMissTokens,
	}
	if r := u.ReasoningTokens() + o.ReasoningTokens(); r > 0 {
		sum.CompletionTokensDetails = &CompletionTokensDetails{ReasoningTokens: r}
	}
	return sum
}
