package llm

// StreamChunk represents a single `data:` event of a streaming response.
type StreamChunk struct {
	ID      string        `json:"id,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []StreamDelta `json:"choices"`
}

// StreamDelta carries the incremental content of one choice.
type StreamDelta struct {
	Index int `json:"index"`
	Delta struct {
		Role    Role   `json:"role,omitempty"`
		Content string `json:"content,omitempty"`
	} `json:"delta"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Content returns the first choice's content delta, if any.
func (c *StreamChunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
