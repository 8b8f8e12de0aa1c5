package llmservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

// Generator produces an answer from a system prompt and a user prompt.
type Generator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

// Client wraps a langchaingo model for answer generation.
type Client struct {
	llm         llms.Model
	temperature float64
}

var _ Generator = (*Client)(nil)

var thinkTagRe = regexp.MustCompile(models.ThinkTag)

// NewClient creates a generation client for the backend named in the config.
func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	var model llms.Model

	switch llmConfig.Provider {
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("error initializing ollama LLM: %w", err)
		}
		model = llm
	case config.ProviderOpenAI:
		llm, err := openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("error initializing openai LLM: %w", err)
		}
		model = llm
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", models.ErrInvalidConfiguration, llmConfig.Provider)
	}

	return &Client{llm: model, temperature: llmConfig.Temperature}, nil
}

// GenerateContent calls the model with optional tools.
func (c *Client) GenerateContent(ctx context.Context, tools []llms.Tool, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	opts := []llms.CallOption{}
	if c.temperature > 0 {
		opts = append(opts, llms.WithTemperature(c.temperature))
	}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}
	return c.llm.GenerateContent(ctx, messages, opts...)
}

// GenerateText sends a system and user message and returns the first choice,
// with any reasoning <think> blocks stripped.
func (c *Client) GenerateText(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: user}},
		},
	}

	res, err := c.GenerateContent(ctx, nil, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", models.ErrGenerationFailed)
	}

	content := thinkTagRe.ReplaceAllString(res.Choices[0].Content, "")
	return strings.TrimSpace(content), nil
}
