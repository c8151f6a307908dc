package server

import "github.com/papercomputeco/voicechat/pkg/llm"

// SendTextRequest is the body of /send_text and /send_text/stream.
type SendTextRequest struct {
	Text string `json:"text"`
	// Model overrides the configured model for this turn.
	Model string `json:"model,omitempty"`
}

// TurnResponse reports a completed turn.
type TurnResponse struct {
	Success         bool   `json:"success"`
	TranscribedText string `json:"transcribed_text,omitempty"`
	AIResponse      string `json:"ai_response"`
	// Degraded is set when AIResponse is a fallback message.
	Degraded bool `json:"degraded"`
}

// MessageResponse acknowledges a control request.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResponse is the body of /status.
type StatusResponse struct {
	Recording             bool `json:"recording"`
	Speaking              bool `json:"speaking"`
	ConversationLength    int  `json:"conversation_length"`
	ComponentsInitialized bool `json:"components_initialized"`
}

// ModelsResponse is the body of /models.
type ModelsResponse struct {
	Success bool            `json:"success"`
	Models  []llm.ModelInfo `json:"models"`
}

// StreamEvent is one server-sent event of /send_text/stream.
type StreamEvent struct {
	Content string `json:"content"`
}

// TranscriptResponse contains the transcript chain ending at a node.
type TranscriptResponse struct {
	// Messages in chronological order (oldest first, up to and including the head)
	Messages []TranscriptMessage `json:"messages"`
	HeadHash string              `json:"head_hash"`
	Depth    int                 `json:"depth"`
}

// TranscriptMessage is one stored message of the transcript.
type TranscriptMessage struct {
	Hash       string  `json:"hash"`
	ParentHash *string `json:"parent_hash,omitempty"`
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	Model      string  `json:"model,omitempty"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// TranscriptStats summarizes the transcript store.
type TranscriptStats struct {
	TotalNodes int    `json:"total_nodes"`
	RootCount  int    `json:"root_count"`
	LeafCount  int    `json:"leaf_count"`
	HeadHash   string `json:"head_hash"`
}
