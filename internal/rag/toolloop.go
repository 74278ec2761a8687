package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

const defaultMaxToolSteps = 4

// ToolLoop is the alternative strategy: instead of injecting context up
// front, the model decides when to consult the knowledge base through tool
// calls. Higher latency than DirectRAG; kept for deployments that want the
// model to reason about tool use.
type ToolLoop struct {
	MaxSteps int
}

var toolDefinitions = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "search_knowledge",
			Description: "Search the stored document knowledge base for detailed topics, uploaded files, or specific facts.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query.",
					},
				},
				"required": []string{"query"},
			},
		},
	},
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "current_time",
			Description: "Get the current local time and date.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	},
}

func (t *ToolLoop) Respond(ctx context.Context, s *Session, query string) (string, error) {
	maxSteps := t.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxToolSteps
	}

	messages := composeMessages("", s.memory.Turns(), query)
	for step := 0; step < maxSteps; step++ {
		resp, err := s.client.GenerateContent(ctx, messages, llms.WithTools(toolDefinitions))
		if err != nil {
			return "", err
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			return strings.TrimSpace(choice.Content), nil
		}

		assistantParts := make([]llms.ContentPart, 0, len(choice.ToolCalls))
		for _, call := range choice.ToolCalls {
			assistantParts = append(assistantParts, call)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		for _, call := range choice.ToolCalls {
			result := s.dispatchTool(ctx, call)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}
	return "", fmt.Errorf("tool loop did not converge within %d steps", maxSteps)
}

func (s *Session) dispatchTool(ctx context.Context, call llms.ToolCall) string {
	switch call.FunctionCall.Name {
	case "search_knowledge":
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("invalid arguments: %v", err)
		}
		knowledge := s.retriever.Retrieve(ctx, args.Query, s.topK)
		if knowledge == "" {
			return "No relevant information found."
		}
		return knowledge
	case "current_time":
		return fmt.Sprintf("The current local time is %s.", time.Now().Format(time.RFC1123))
	default:
		log.Warn().Str("tool", call.FunctionCall.Name).Msg("model requested unknown tool")
		return fmt.Sprintf("unknown tool: %s", call.FunctionCall.Name)
	}
}
