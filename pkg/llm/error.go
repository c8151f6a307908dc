// Package llm provides the wire representations of OpenAI-compatible chat completion
// requests and responses, and the conversation types built from them.
package llm

// ErrorResponse is the error envelope returned by the HTTP API.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
