package llm

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message content
}

// UserMessage creates a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant-authored message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
