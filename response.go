package deepseek

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishStop                       FinishReason = "stop"
	FinishLength                     FinishReason = "length"
	FinishContentFilter              FinishReason = "content_filter"
	FinishToolCalls                  FinishReason = "tool_calls"
	FinishInsufficientSystemResource FinishReason = "insufficient_system_resource"
)

// LogProb is the log probability of one output token.
type LogProb struct {
	Token       string       `json:"token"`
	Logprob     float64      `json:"logprob"`
	Bytes       []int        `json:"bytes,omitempty"`
	TopLogprobs []TopLogProb `json:"top_logprobs,omitempty"`
}

// TopLogProb is one of the most likely alternatives at a token position.
type TopLogProb struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
	Bytes   []int   `json:"bytes,omitempty"`
}

// LogProbs wraps per-token log probabilities.
type LogProbs struct {
	Content []LogProb `json:"content"`
}

// Choice is one alternative of a non-streaming chat completion.
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
	Logprobs     *LogProbs    `json:"logprobs,omitempty"`
}

// ChatCompletion is the response of a non-streaming chat completion.
type ChatCompletion struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	SystemFingerprint string   `json:"system_fingerprint"`
	Choices           []Choice `json:"choices"`
	Usage             *Usage   `json:"usage,omitempty"`
}

// Delta is the incremental message content carried by one chunk.
type Delta struct {
	Role             Role       `json:"role,omitempty"`
	Content          string     `json:"content,omitempty"`
	ReasoningContent string     `json:"reasoning_content,omitempty"`
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
}

// ChunkChoice is one alternative within a streamed chunk. FinishReason is
// empty until the final chunk of the choice.
type ChunkChoice struct {
	Index        int          `json:"index"`
	Delta        Delta        `json:"delta"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Logprobs     *LogProbs    `json:"logprobs,omitempty"`
}

// ChatCompletionChunk is one data event of a streamed chat completion. The
// last chunk carries Usage when usage reporting was requested.
type ChatCompletionChunk struct {
	ID                string        `json:"id"`
	Object            string        `json:"object"`
	Created           int64         `json:"created"`
	Model             string        `json:"model"`
	SystemFingerprint string        `json:"system_fingerprint"`
	Choices           []ChunkChoice `json:"choices"`
	Usage             *Usage        `json:"usage,omitempty"`
}

// TextChoice is one alternative of a FIM completion or chunk.
type TextChoice struct {
	Index        int          `json:"index"`
	Text         string       `json:"text"`
	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Logprobs     *struct {
		TextOffset    []int                `json:"text_offset"`
		TokenLogprobs []float64            `json:"token_logprobs"`
		Tokens        []string             `json:"tokens"`
		TopLogprobs   []map[string]float64 `json:"top_logprobs"`
	} `json:"logprobs,omitempty"`
}

// FIMCompletion is the response of a fill-in-the-middle completion. The same
// shape is used for each streamed chunk.
type FIMCompletion struct {
	ID                string       `json:"id"`
	Object            string       `json:"object"`
	Created           int64        `json:"created"`
	Model             string       `json:"model"`
	SystemFingerprint string       `json:"system_fingerprint"`
	Choices           []TextChoice `json:"choices"`
	Usage             *Usage       `json:"usage,omitempty"`
}

// ModelEntry describes one model available to the account.
type ModelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the response of the list-models endpoint.
type ModelList struct {
	Object string       `json:"object"`
	Data   []ModelEntry `json:"data"`
}

// BalanceInfo is the balance held in one currency.
type BalanceInfo struct {
	Currency        string `json:"currency"`
	TotalBalance    string `json:"total_balance"`
	GrantedBalance  string `json:"granted_balance"`
	ToppedUpBalance string `json:"topped_up_balance"`
}

// Balance is the response of the user-balance endpoint.
type Balance struct {
	IsAvailable  bool          `json:"is_available"`
	BalanceInfos []BalanceInfo `json:"balance_infos"`
}
