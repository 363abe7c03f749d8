package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skiff-ai/skiff/internal/log"
)

const defaultTimeout = 120 * time.Second

// Config holds the connection settings for a local model endpoint.
type Config struct {
	// Host is the base URL of the OpenAI-compatible server,
	// e.g. "http://localhost:11434" for Ollama.
	Host string

	// Model is the model identifier sent with every request.
	Model string

	// Timeout bounds a single completion call. Local models can take a
	// while on long contexts; default is 120s.
	Timeout time.Duration
}

// Client calls an OpenAI-compatible /v1/chat/completions endpoint.
//
// The client performs no retries. A failed call surfaces immediately as
// ErrModelUnavailable or ErrModelResponseParse so the turn can fail fast
// with an actionable message instead of stalling behind backoff.
//
// Client is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger log.Logger
}

// NewClient creates a Client for the given endpoint.
func NewClient(cfg Config, logger log.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete performs one chat-completions call and returns the assistant
// message of the first choice. Assistant text is sanitized (special chat
// tokens stripped, excess blank lines collapsed) before return; tool-call
// structures pass through untouched.
func (c *Client) Complete(ctx context.Context, req Request) (*Message, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.cfg.Host + "/v1/chat/completions")
	if err != nil {
		c.logger.Error("model call failed", "host", c.cfg.Host, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error("model returned error status",
			"host", c.cfg.Host,
			"status", resp.StatusCode(),
			"body_snippet", snippet(resp.Body(), 200))
		return nil, fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrModelResponseParse, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrModelResponseParse)
	}

	msg := parsed.Choices[0].Message
	if msg.Role != RoleAssistant {
		return nil, fmt.Errorf("%w: first choice role %q, want %q", ErrModelResponseParse, msg.Role, RoleAssistant)
	}
	for i, tc := range msg.ToolCalls {
		if tc.Function.Name == "" {
			return nil, fmt.Errorf("%w: tool call %d has no function name", ErrModelResponseParse, i)
		}
		if !json.Valid(tc.Function.ArgumentsJSON()) {
			return nil, fmt.Errorf("%w: tool call %d arguments are not valid JSON", ErrModelResponseParse, i)
		}
	}

	msg.Content = CleanContent(msg.Content)

	c.logger.Debug("model call complete",
		"model", req.Model,
		"messages", len(req.Messages),
		"tool_calls", len(msg.ToolCalls),
		"elapsed", time.Since(start))
	return &msg, nil
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
