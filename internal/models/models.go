package models

// Chunk represents a contiguous text span split out of a document.
// SequenceIndex reflects document order and is preserved into the record id.
type Chunk struct {
	Content       string
	SequenceIndex int
}

// ConversationTurn is one message in the session memory.
type ConversationTurn struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
