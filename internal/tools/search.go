package tools

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

// SearchTool queries the Serper.dev Google-search API for market research.
type SearchTool struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// MaxResults caps how many organic hits are returned to the model.
	MaxResults int
}

func (t *SearchTool) Name() string { return "web_search" }

func (t *SearchTool) Description() string {
	return "Search the web. Provide a 'query'; returns titles, links and " +
		"snippets of the top results. Useful for market and competitor research."
}

func (t *SearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The search query."}
		},
		"required": ["query"]
	}`)
}

type searchArgs struct {
	Query string `json:"query"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	Message string `json:"message"`
}

func (t *SearchTool) Run(ctx context.Context, raw json.RawMessage) (string, error) {
	var args searchArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("web_search: decode arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", errors.New("web_search: query is required")
	}
	if strings.TrimSpace(t.APIKey) == "" {
		return "", errors.New("web_search: SERPER_API_KEY is not configured")
	}
	baseURL := strings.TrimRight(t.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}
	httpClient := t.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	body, err := json.Marshal(map[string]string{"q": args.Query})
	if err != nil {
		return "", fmt.Errorf("web_search: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("web_search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", t.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_search: http request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("web_search: read response: %w", err)
	}
	var decoded serperResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return "", fmt.Errorf("web_search: decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := decoded.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("web_search: %s", msg)
	}
	if len(decoded.Organic) == 0 {
		return "No results found.", nil
	}

	limit := t.MaxResults
	if limit <= 0 {
		limit = 10
	}
	var b strings.Builder
	for i, hit := range decoded.Organic {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, hit.Title, hit.Link, hit.Snippet)
	}
	return b.String(), nil
}

var _ Tool = (*SearchTool)(nil)
