// Package openrouter generates images through OpenRouter's chat-completions
// API. Unlike the Hunyuan job API this one is synchronous and accepts inline
// data URLs, so local reference images are embedded rather than uploaded.
package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures the OpenRouter client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Client calls the chat-completions endpoint with image modality enabled.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

const defaultModel = "google/gemini-3.1-flash-image-preview"

// NewClient constructs a client; it fails fast on a missing API key.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			// OpenRouter extension: generated images arrive here.
			Images []struct {
				ImageURL imageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateImages produces one or more images for the prompt, optionally
// guided by reference images (URLs, data URLs, or local file paths). It
// returns the generated image URLs, typically base64 data URLs.
func (c *Client) GenerateImages(ctx context.Context, prompt string, references []string) ([]string, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("openrouter: prompt is required")
	}
	content := make([]contentPart, 0, len(references)+1)
	for _, ref := range references {
		url, err := imageAsURL(ref)
		if err != nil {
			return nil, err
		}
		content = append(content, contentPart{Type: "image_url", ImageURL: &imageRef{URL: url}})
	}
	content = append(content, contentPart{Type: "text", Text: prompt})

	payload := chatRequest{
		Model:      c.model,
		Messages:   []chatMessage{{Role: "user", Content: content}},
		Modalities: []string{"image", "text"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openrouter: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openrouter: read response: %w", err)
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("openrouter: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("openrouter: %s (%v)", decoded.Error.Message, decoded.Error.Code)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("openrouter: no choices in response")
	}
	var urls []string
	for _, img := range decoded.Choices[0].Message.Images {
		if url := strings.TrimSpace(img.ImageURL.URL); url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// Describe asks a vision model about an image and returns its text answer.
// The image may be a URL, data URL, or local file path.
func (c *Client) Describe(ctx context.Context, image, question string) (string, error) {
	if strings.TrimSpace(image) == "" {
		return "", errors.New("openrouter: image is required")
	}
	if strings.TrimSpace(question) == "" {
		question = "Describe this product photo in detail: the product, materials, colors, lighting, background and composition."
	}
	url, err := imageAsURL(image)
	if err != nil {
		return "", err
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{Role: "user", Content: []contentPart{
			{Type: "image_url", ImageURL: &imageRef{URL: url}},
			{Type: "text", Text: question},
		}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openrouter: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openrouter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openrouter: read response: %w", err)
	}
	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openrouter: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("openrouter: %s (%v)", decoded.Error.Message, decoded.Error.Code)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openrouter: no choices in response")
	}
	return decoded.Choices[0].Message.Content, nil
}

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageAsURL passes remote and data URLs through and inlines local files as
// base64 data URLs with a MIME type guessed from the extension.
func imageAsURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("openrouter: read reference image: %w", err)
	}
	mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(ref))]
	if !ok {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
