package trace

// ExchangeData holds one request/response round trip with the chat model.
type ExchangeData struct {
	Operation string `json:"operation"`
	SessionID string `json:"session_id"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`

	SystemPrompt string `json:"system_prompt,omitempty"`
	UserMessage  string `json:"user_message"`
	Response     string `json:"response,omitempty"`

	// Fallback is true when the response could not be decoded and the
	// operation returned its empty default.
	Fallback bool `json:"fallback"`
}
