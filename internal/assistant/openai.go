package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type OpenAIAssistant struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAIAssistant(cfg OpenAIConfig, logger *zap.Logger) *OpenAIAssistant {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 150
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &OpenAIAssistant{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

func (a *OpenAIAssistant) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   a.maxTokens,
		Temperature: float32(a.temperature),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("Failed to get chat completion",
			zap.Error(err),
			zap.String("model", a.model))
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	a.logger.Debug("Chat completion received",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
