package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "telegram_booking_assistant/pkg/errors"
	"telegram_booking_assistant/pkg/metrics"

	openai "github.com/sashabaranov/go-openai"
)

// Instruction profiles. The persona profile carries the long conversational
// instruction; the extraction profile carries the strict structure-only one.
const (
	ProfilePersona    = "persona"
	ProfileExtraction = "extraction"
	ProfileTime       = "time"
)

// Message is one entry of the history sent to the model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request: a system instruction plus an
// ordered message history
type Request struct {
	Profile     string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Client is the stateless text-completion collaborator. Timeouts and
// transport failures surface as errors matching errors.ErrLLMUnavailable.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIConfig configures the API-backed client
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient implements Client on any OpenAI-compatible completion API
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an API-backed completion client
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Complete performs one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	metrics.LLMRequestDuration.WithLabelValues(req.Profile).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RecordLLMRequest(req.Profile, "error")
		return "", apperrors.ErrLLMUnavailable.WithError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.RecordLLMRequest(req.Profile, "error")
		return "", apperrors.ErrLLMUnavailable.WithError(fmt.Errorf("empty response from model"))
	}

	metrics.RecordLLMRequest(req.Profile, "ok")
	return resp.Choices[0].Message.Content, nil
}
