package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const (
	FallbackReply = "I'm having trouble connecting to our AI service. Let me help you with a basic search instead."

	temperature    = 0.7
	maxTokens      = 500
	defaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Assistant phrases catalog lookups as a conversational reply.
type Assistant struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func New(cfg Config) *Assistant {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Assistant{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger.With("component", "assistant"),
	}
}

func systemPrompt(data models.CatalogData) (string, error) {
	catalog, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`You are a helpful product catalog assistant. You help users find products from our catalog.

Current catalog data: %s

Instructions:
- Be conversational and helpful
- When listing products, show the name, price and a short description
- If nothing matches, suggest alternatives or ask a clarifying question
- Keep responses concise but informative
- Close by asking whether they need help with anything else`, catalog), nil
}

func (a *Assistant) complete(ctx context.Context, message string, data models.CatalogData) (string, error) {
	prompt, err := systemPrompt(data)
	if err != nil {
		return "", fmt.Errorf("encode catalog data: %w", err)
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("model returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// Reply never fails; model errors collapse into FallbackReply.
func (a *Assistant) Reply(ctx context.Context, message string, data models.CatalogData) string {
	reply, err := a.complete(ctx, message, data)
	if err != nil {
		a.logger.Warn("model reply failed, using fallback", "model", a.model, "error", err)
		return FallbackReply
	}
	return reply
}
