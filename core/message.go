package core

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is a single conversation turn. Messages are immutable values;
// the short-term buffer that created one is its only owner.
type Message struct {
	Role    Role
	Content string
}

// UserMessage creates a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AgentMessage creates an agent-authored message.
func AgentMessage(content string) Message {
	return Message{Role: RoleAgent, Content: content}
}
