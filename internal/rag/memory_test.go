package rag

import (
	"testing"

	"document-chat/internal/models"
)

func TestMemoryAppendKeepsPairs(t *testing.T) {
	m := NewMemory()
	m.Append("hello", "hi there")
	m.Append("what's up", "not much")

	turns := m.Turns()
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		wantRole := models.RoleUser
		if i%2 == 1 {
			wantRole = models.RoleAssistant
		}
		if turn.Role != wantRole {
			t.Fatalf("turn %d: expected role %s, got %s", i, wantRole, turn.Role)
		}
	}
	if turns[0].Content != "hello" || turns[1].Content != "hi there" {
		t.Fatalf("first pair out of order: %+v", turns[:2])
	}
}

func TestMemoryTurnsReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Append("a", "b")

	turns := m.Turns()
	turns[0].Content = "mutated"
	if m.Turns()[0].Content != "a" {
		t.Fatal("external mutation leaked into memory")
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory()
	m.Append("a", "b")
	m.Reset()
	if m.Len() != 0 {
		t.Fatalf("expected empty memory after reset, got %d turns", m.Len())
	}
}
