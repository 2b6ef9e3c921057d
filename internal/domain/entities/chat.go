package entities

import "time"

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in a conversation. Append-only within a
// session.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessage creates a message stamped with the current time
func NewChatMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// ChatSessionState is the persisted conversation state for one scope:
// either a single recording or the global corpus. The engine session
// handle is opaque; a handle change mid-conversation is accepted
// silently, last writer wins.
type ChatSessionState struct {
	Messages  []ChatMessage `json:"messages"`
	SessionID string        `json:"sessionId,omitempty"`
}
