package llm

// ChatRequest represents a chat completion request (OpenAI-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`    // Model identifier (e.g., "openai/gpt-4o-mini")
	Messages []Message `json:"messages"` // Conversation history, newest last
	GenerationParams
	Stream bool `json:"stream"` // Whether to stream the response as server-sent events
}
