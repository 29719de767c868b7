// Package advisor asks a hosted language model for free-form conversion
// advice. It speaks the OpenAI-compatible chat completions protocol, which
// Groq serves.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is Groq's chat completions endpoint.
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultModel is the model every query is sent to.
	DefaultModel = "llama-3.3-70b-versatile"
)

// maxErrorBody bounds how much of an error response ends up in a message.
const maxErrorBody = 512

// Config holds configuration for the advisor client.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string

	// Timeout for a single completion, defaults to 60s.
	Timeout time.Duration

	// RequestsPerMinute limits calls to the provider, defaults to 30.
	RequestsPerMinute int

	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client sends free-text queries to a chat completion endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates an advisor client. A missing API key is not checked
// here; the provider rejects the call and the caller gets a ProviderError.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default().WithPrefix("advisor")
	}

	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:     cfg.Logger,
	}
}

// Model returns the model identifier queries are sent to.
func (c *Client) Model() string {
	return c.model
}

// Ask sends query as the only user message and returns the completion text.
func (c *Client) Ask(ctx context.Context, query string) convert.Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return convert.Fail(convert.KindProviderError, "Please enter a question.", errors.New("empty query"))
	}

	text, err := c.complete(ctx, query)
	if err != nil {
		c.logger.Warn("completion failed", "model", c.model, "err", err)
		return convert.Fail(convert.KindProviderError, fmt.Sprintf("AI request failed: %v", err), err)
	}
	return convert.Answer(text)
}

func (c *Client) complete(ctx context.Context, query string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: query}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("provider error: %s - %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("provider error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty completion")
	}

	c.logger.Debug("completion received", "model", c.model, "took", time.Since(start))
	return content, nil
}
