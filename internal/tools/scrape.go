package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ScrapeTool fetches a web page and returns its visible text.
type ScrapeTool struct {
	HTTPClient *http.Client
	// MaxBytes caps how much page text is returned to the model.
	MaxBytes int
}

func (t *ScrapeTool) Name() string { return "scrape_website" }

func (t *ScrapeTool) Description() string {
	return "Fetch a web page and return its visible text with markup removed. " +
		"Provide 'website_url'."
}

func (t *ScrapeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"website_url": {"type": "string", "description": "The page URL to fetch."}
		},
		"required": ["website_url"]
	}`)
}

type scrapeArgs struct {
	WebsiteURL string `json:"website_url"`
}

var (
	scriptRe     = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

func (t *ScrapeTool) Run(ctx context.Context, raw json.RawMessage) (string, error) {
	var args scrapeArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("scrape_website: decode arguments: %w", err)
	}
	url := strings.TrimSpace(args.WebsiteURL)
	if url == "" {
		return "", errors.New("scrape_website: website_url is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("scrape_website: unsupported url: %s", url)
	}
	httpClient := t.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("scrape_website: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape_website: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("scrape_website: status %d for %s", resp.StatusCode, url)
	}

	limit := t.MaxBytes
	if limit <= 0 {
		limit = 200 << 10
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)))
	if err != nil {
		return "", fmt.Errorf("scrape_website: read body: %w", err)
	}
	return stripHTML(string(body)), nil
}

// stripHTML removes scripts, styles and tags, keeping readable text only.
func stripHTML(page string) string {
	text := scriptRe.ReplaceAllString(page, " ")
	text = tagRe.ReplaceAllString(text, "\n")
	text = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'").Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var _ Tool = (*ScrapeTool)(nil)
