package llm

// GenerationParams are the fixed sampling parameters sent with every completion request.
type GenerationParams struct {
	MaxTokens        int     `json:"max_tokens"`        // Max tokens to generate
	Temperature      float64 `json:"temperature"`       // Creativity (0.0-2.0)
	TopP             float64 `json:"top_p"`             // Nucleus sampling threshold
	FrequencyPenalty float64 `json:"frequency_penalty"` // Penalty for frequent tokens
	PresencePenalty  float64 `json:"presence_penalty"`  // Penalty for already present tokens
}

// DefaultGenerationParams returns the parameters used when none are configured.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		MaxTokens:        1000,
		Temperature:      0.7,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}
}
