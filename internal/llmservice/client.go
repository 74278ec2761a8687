package llmservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-chat/internal/config"
)

// InvocationError marks a failed language-model call. Chat turns that hit
// it are surfaced to the caller and never committed to memory.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("language model invocation failed: %v", e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Client wraps a langchaingo chat model with a caller-supplied timeout.
type Client struct {
	llm     llms.Model
	timeout time.Duration
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	log.Debug().
		Str("provider", llmConfig.Provider).
		Str("model", llmConfig.Model).
		Str("base_url", llmConfig.BaseURL).
		Msg("initializing language model client")

	var (
		llm llms.Model
		err error
	)
	switch llmConfig.Provider {
	case "ollama":
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case "openai":
		llm, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	default:
		err = fmt.Errorf("unknown llm provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(llmConfig.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{llm: llm, timeout: timeout}, nil
}

// GenerateContent performs one synchronous model call.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		return nil, &InvocationError{Err: err}
	}
	if len(res.Choices) == 0 {
		return nil, &InvocationError{Err: fmt.Errorf("model returned no choices")}
	}
	return res, nil
}
