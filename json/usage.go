package json

import deepseek "github.com/hunjixin/deepseek-api"

type usageDTO struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	CacheHitTokens   int `json:"cache_hit_tokens"`
	CacheMissTokens  int `json:"cache_miss_tokens"`
	ReasoningTokens  int `json:"reasoning_tokens,omitempty"`
}

func marshalUsage(u deepseek.Usage) usageDTO {
	return usageDTO{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		CacheHitTokens:   u.PromptCacheHitTokens,
		CacheMissTokens:  u.PromptCacheMissTokens,
		ReasoningTokens:  u.ReasoningTokens(),
	}
}

func unmarshalUsage(dto usageDTO) deepseek.Usage {
	u := deepseek.Usage{
		PromptTokens:          dto.PromptTokens,
		CompletionTokens:      dto.CompletionTokens,
		TotalTokens:           dto.PromptTokens + dto.CompletionTokens,
		PromptCacheHitTokens:  dto.CacheHitTokens,
		PromptCacheMissTokens: dto.CacheMissTokens,
	}
	if dto.ReasoningTokens > 0 {
		u.CompletionTokensDetails = &deepseek.CompletionTokensDetails{ReasoningTokens: dto.ReasoningTokens}
	}
	return u
}
