package metrics

// TokenUsage captures LLM token counts spent on a single analysis.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`

	// EstimatedPromptTokens is the local tokenizer count of the text prompt.
	EstimatedPromptTokens int `json:"estimatedPromptTokens,omitempty"`
}
