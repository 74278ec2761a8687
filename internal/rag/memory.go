package rag

import "document-chat/internal/models"

// Memory is the append-only ordered log of conversation turns, replayed
// into every model call. It lives for the session and is cleared only by an
// explicit reset. Not safe for concurrent turns; callers must serialize
// access through the owning session.
type Memory struct {
	turns []models.ConversationTurn
}

func NewMemory() *Memory {
	return &Memory{}
}

// Append records a completed turn as its user/assistant pair. Callers only
// append after a successful model invocation, so the log never contains an
// orphaned user turn.
func (m *Memory) Append(user, assistant string) {
	m.turns = append(m.turns,
		models.ConversationTurn{Role: models.RoleUser, Content: user},
		models.ConversationTurn{Role: models.RoleAssistant, Content: assistant},
	)
}

// Turns returns a copy of the log in order.
func (m *Memory) Turns() []models.ConversationTurn {
	out := make([]models.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

func (m *Memory) Len() int {
	return len(m.turns)
}

func (m *Memory) Reset() {
	m.turns = nil
}
