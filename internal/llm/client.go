// Package llm talks to an OpenAI-compatible chat completions API to turn
// questions into Cypher, summarize results and render Cypher as SQL.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/maraichr/catalograph/internal/config"
)

const (
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// ErrNoChoices is returned when the API answers without a completion.
var ErrNoChoices = errors.New("LLM returned no choices")

// Client is an OpenAI-compatible chat completions client.
type Client struct {
	client  *openai.Client
	model   string
	backoff time.Duration
	logger  *slog.Logger
}

// NewClient creates a client for the configured endpoint. An empty base URL
// means the public OpenAI API.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		backoff: retryDelay,
		logger:  logger,
	}
}

// Complete sends a system and user message and returns the trimmed reply.
// Rate limiting and overload responses are retried with linear backoff.
func (c *Client) Complete(ctx context.Context, system, prompt string, temperature float32, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", ErrNoChoices
			}
			c.logger.Debug("llm completion",
				slog.String("model", c.model),
				slog.Int("prompt_len", len(prompt)),
				slog.Int("total_tokens", resp.Usage.TotalTokens),
				slog.Duration("elapsed", time.Since(start)))
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}
		lastErr = err
		if !retryable(err) {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		c.logger.Warn("llm request throttled, retrying",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func retryable(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, 529:
		return true
	}
	return false
}
