// Package llm is a minimal OpenAI-compatible chat-completions client with
// function calling, pointed at DashScope's compatible mode by default. It is
// the conversation engine behind the crew runner.
package llm

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
)

// Options configures the chat client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// LogDir enables request/response logging into llm_log_<timestamp>.json
	// when non-empty.
	LogDir         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client performs chat-completions calls.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *requestLog
}

// Message is one turn of a chat conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is the model's request to invoke a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef declares a callable tool to the model.
type ToolDef struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a tool function with a JSON-schema parameter object.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Tools    []ToolDef `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a chat client; it fails fast on a missing API key.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "qwen3.5-plus"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var log *requestLog
	if dir := strings.TrimSpace(opts.LogDir); dir != "" {
		log = newRequestLog(dir)
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat sends the conversation and returns the assistant's next message,
// which may carry tool calls instead of content.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolDef) (*Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("llm: at least one message is required")
	}
	payload := chatRequest{Model: c.model, Messages: messages, Tools: tools}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}
	c.log.record("request", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}
	c.log.record("response", raw)

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("llm: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("llm: %s (%s)", decoded.Error.Message, decoded.Error.Code)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("llm: no choices in response")
	}
	msg := decoded.Choices[0].Message
	return &msg, nil
}
