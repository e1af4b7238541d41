// Package ark implements the structuring.Completer interface against
// an Ark chat-completions endpoint (OpenAI-compatible wire format).
package ark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redinklabs/redink-api/internal/retry"
	"github.com/redinklabs/redink-api/internal/structuring"
)

const (
	defaultBaseURL             = "https://ark.cn-beijing.volces.com/api/v3"
	defaultTimeout             = 120 * time.Second
	defaultMaxCompletionTokens = 65535
	defaultTemperature         = 0.7
	defaultReasoningEffort     = "medium"
)

// Config holds the chat client settings.
type Config struct {
	APIKey              string
	ModelID             string
	BaseURL             string
	Timeout             time.Duration
	MaxCompletionTokens int
	Temperature         float64
	ReasoningEffort     string
	Retry               retry.Policy
}

// Client calls the chat completions API with a per-call timeout and
// the shared retry policy.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a chat client. If logger is nil the default logger
// is used.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("llm api key cannot be empty")
	}
	if config.ModelID == "" {
		return nil, errors.New("llm model id cannot be empty")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxCompletionTokens <= 0 {
		config.MaxCompletionTokens = defaultMaxCompletionTokens
	}
	if config.Temperature <= 0 {
		config.Temperature = defaultTemperature
	}
	if config.ReasoningEffort == "" {
		config.ReasoningEffort = defaultReasoningEffort
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = retry.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With(slog.String("component", "llm_client")),
	}, nil
}

var _ structuring.Completer = (*Client)(nil)

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	ReasoningEffort     string        `json:"reasoning_effort,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends the system instruction and user prompt to the model
// and returns the raw text of the first choice. Transport failures are
// retried within the attempt budget; an empty completion is a content
// problem and is returned immediately.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var content string
	err := c.config.Retry.Do(ctx, c.shouldRetry, func(ctx context.Context) error {
		var attemptErr error
		content, attemptErr = c.completeOnce(ctx, systemPrompt, userPrompt)
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) shouldRetry(err error) bool {
	return errors.Is(err, structuring.ErrTransient)
}

func (c *Client) completeOnce(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: c.config.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:         c.config.Temperature,
		MaxCompletionTokens: c.config.MaxCompletionTokens,
		ReasoningEffort:     c.config.ReasoningEffort,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling chat completions api", "model", c.config.ModelID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", structuring.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response (status %d): %v",
			structuring.ErrTransient, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("%w: chat api returned status %d: %s",
			structuring.ErrTransient, resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", structuring.ErrEmptyResponse
	}

	c.logger.Debug("chat completion received", "content_chars", len(parsed.Choices[0].Message.Content))
	return parsed.Choices[0].Message.Content, nil
}
