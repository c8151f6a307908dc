package llm

// ModelList is the response of the `/models` listing endpoint.
type ModelList struct {
	Data []ModelInfo `json:"data"`
}

// ModelInfo describes a single model offered by the provider.
type ModelInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	ContextLength int      `json:"context_length,omitempty"`
	Pricing       *Pricing `json:"pricing,omitempty"`
}

// Pricing is the per-token cost of a model, as decimal strings.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Find returns the model with the given identifier, or nil.
func (l *ModelList) Find(id string) *ModelInfo {
	if l == nil {
		return nil
	}
	for i := range l.Data {
		if l.Data[i].ID == id {
			return &l.Data[i]
		}
	}
	return nil
}
