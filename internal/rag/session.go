package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"document-chat/internal/models"
)

// ContextRetriever supplies the knowledge context for a query. An empty
// string means "no context"; retrieval failures are absorbed upstream.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) string
}

// ModelClient is the language-model collaborator: one synchronous call, one
// response.
type ModelClient interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// ResponseStrategy produces the assistant's answer for one turn. The
// default is the direct RAG chain; a tool-dispatch loop is available as an
// alternative.
type ResponseStrategy interface {
	Respond(ctx context.Context, s *Session, query string) (string, error)
}

// Session owns one conversation: its memory, its retriever binding and its
// model client. Construct one per user session; turns against a single
// session must be serialized by the caller.
type Session struct {
	memory    *Memory
	retriever ContextRetriever
	client    ModelClient
	strategy  ResponseStrategy
	topK      int
}

type Option func(*Session)

func WithStrategy(strategy ResponseStrategy) Option {
	return func(s *Session) { s.strategy = strategy }
}

func WithTopK(k int) Option {
	return func(s *Session) { s.topK = k }
}

func NewSession(retriever ContextRetriever, client ModelClient, opts ...Option) *Session {
	s := &Session{
		memory:    NewMemory(),
		retriever: retriever,
		client:    client,
		strategy:  &DirectRAG{},
		topK:      3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Memory() *Memory { return s.memory }

// Chat runs one turn: retrieve context, compose the prompt, invoke the
// model, then commit the pair to memory. A failed invocation surfaces the
// error and leaves memory untouched, so retrying the same query is safe.
func (s *Session) Chat(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	answer, err := s.strategy.Respond(ctx, s, query)
	if err != nil {
		return "", err
	}

	s.memory.Append(query, answer)
	return answer, nil
}

// DirectRAG is the default strategy: one retrieval, one model call.
type DirectRAG struct{}

func (DirectRAG) Respond(ctx context.Context, s *Session, query string) (string, error) {
	knowledge := s.retriever.Retrieve(ctx, query, s.topK)
	messages := composeMessages(knowledge, s.memory.Turns(), query)

	resp, err := s.client.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// composeMessages builds the model input: system instructions carrying the
// retrieved context, the replayed conversation, then the new user turn.
func composeMessages(knowledge string, turns []models.ConversationTurn, query string) []llms.MessageContent {
	system := models.SystemPromptNoContext
	if knowledge != "" {
		system = fmt.Sprintf(models.SystemPromptTemplate, knowledge)
	}

	messages := make([]llms.MessageContent, 0, len(turns)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, turn := range turns {
		role := llms.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, query))
	return messages
}
