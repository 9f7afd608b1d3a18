package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/recall-ai/recall-go/core"
)

// DefaultShortTermCapacity bounds the session buffer when no capacity is
// configured.
const DefaultShortTermCapacity = 10

// ShortTermMemory is a bounded, ordered buffer of the current session's
// messages. Appends past capacity evict the oldest messages first.
//
// All operations are total and non-blocking. The buffer is owned by a single
// agent instance and is not safe for concurrent use.
type ShortTermMemory struct {
	capacity     int
	messages     []core.Message
	sessionStart time.Time
}

// NewShortTerm creates a buffer holding at most capacity messages.
// Non-positive capacities fall back to DefaultShortTermCapacity.
func NewShortTerm(capacity int) *ShortTermMemory {
	if capacity <= 0 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTermMemory{
		capacity:     capacity,
		sessionStart: time.Now(),
	}
}

// AddUserMessage appends a user message, trimming to capacity.
func (m *ShortTermMemory) AddUserMessage(content string) {
	m.append(core.UserMessage(content))
}

// AddAgentMessage appends an agent message, trimming to capacity.
func (m *ShortTermMemory) AddAgentMessage(content string) {
	m.append(core.AgentMessage(content))
}

func (m *ShortTermMemory) append(msg core.Message) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.capacity {
		// Strict FIFO: keep the newest capacity messages.
		m.messages = append(m.messages[:0], m.messages[len(m.messages)-m.capacity:]...)
	}
}

// Messages returns a copy of the full ordered sequence.
func (m *ShortTermMemory) Messages() []core.Message {
	out := make([]core.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Recent returns the last n messages, or all of them if fewer exist.
// Non-positive n yields an empty slice.
func (m *ShortTermMemory) Recent(n int) []core.Message {
	if n <= 0 {
		return []core.Message{}
	}
	if n >= len(m.messages) {
		return m.Messages()
	}
	out := make([]core.Message, n)
	copy(out, m.messages[len(m.messages)-n:])
	return out
}

// Len returns the number of buffered messages.
func (m *ShortTermMemory) Len() int {
	return len(m.messages)
}

// Capacity returns the configured maximum.
func (m *ShortTermMemory) Capacity() int {
	return m.capacity
}

// SessionStart returns when the current session began.
func (m *ShortTermMemory) SessionStart() time.Time {
	return m.sessionStart
}

// Clear empties the buffer and starts a new session.
func (m *ShortTermMemory) Clear() {
	m.messages = nil
	m.sessionStart = time.Now()
}

// Summary renders the total message count and the last five messages, each
// truncated to 100 characters and labeled by role.
func (m *ShortTermMemory) Summary() string {
	if len(m.messages) == 0 {
		return "No conversation history."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation history (%d messages):\n", len(m.messages))
	for i, msg := range m.Recent(5) {
		role := "User"
		if msg.Role == core.RoleAgent {
			role = "Agent"
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, role, truncate(msg.Content, 100))
	}
	return b.String()
}

// truncate shortens s to maxLen characters, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
