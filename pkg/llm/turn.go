package llm

// Turn is one user utterance plus the assistant reply it produced.
type Turn struct {
	User      Message `json:"user"`
	Assistant Message `json:"assistant"`
	Model     string  `json:"model,omitempty"`
	// Degraded marks turns whose assistant content is a fallback string.
	Degraded bool `json:"degraded,omitempty"`
}

// Messages returns the turn as the two messages appended to history.
func (t Turn) Messages() []Message {
	return []Message{t.User, t.Assistant}
}
