package genie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/suteetoe/grantdesk/pkg/config"
	"github.com/suteetoe/grantdesk/prometheus"
	"go.uber.org/zap"
)

// Message is one conversation turn sent to the model.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

// Genie generates text for an assistant.
type Genie interface {
	Complete(ctx context.Context, a Assistant, messages []Message) (string, error)
	// Stream calls onDelta with each generated fragment, in order.
	Stream(ctx context.Context, a Assistant, messages []Message, onDelta func(string) error) error
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	api   *openai.Client
	model string
	log   *zap.Logger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.GenieConfig, log *zap.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		log:   log,
	}
}

func (c *Client) request(a Assistant, messages []Message) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: a.SystemPrompt})
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   a.MaxTokens,
		Temperature: a.Temperature,
	}
}

// Complete returns the full response text.
func (c *Client) Complete(ctx context.Context, a Assistant, messages []Message) (string, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, c.request(a, messages))
	if err != nil {
		prometheus.RecordGenie(a.Name, "complete", "error")
		return "", fmt.Errorf("genie %s: %w", a.Name, err)
	}
	if len(resp.Choices) == 0 {
		prometheus.RecordGenie(a.Name, "complete", "error")
		return "", fmt.Errorf("genie %s: empty response", a.Name)
	}

	prometheus.RecordGenie(a.Name, "complete", "ok")
	c.log.Debug("Genie completion finished",
		zap.String("assistant", a.Name),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)))
	return resp.Choices[0].Message.Content, nil
}

// Stream forwards generated fragments to onDelta until the model finishes,
// ctx is cancelled, or onDelta fails.
func (c *Client) Stream(ctx context.Context, a Assistant, messages []Message, onDelta func(string) error) error {
	req := c.request(a, messages)
	req.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		prometheus.RecordGenie(a.Name, "stream", "error")
		return fmt.Errorf("genie %s: %w", a.Name, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			prometheus.RecordGenie(a.Name, "stream", "ok")
			return nil
		}
		if err != nil {
			prometheus.RecordGenie(a.Name, "stream", "error")
			return fmt.Errorf("genie %s: %w", a.Name, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onDelta(resp.Choices[0].Delta.Content); err != nil {
			prometheus.RecordGenie(a.Name, "stream", "aborted")
			return err
		}
	}
}
