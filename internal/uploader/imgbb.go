package uploader

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ImgBBOptions configures the ImgBB backend. An API key is mandatory.
type ImgBBOptions struct {
	APIKey         string
	BaseURL        string
	Expiration     time.Duration // zero means the image never expires
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// ImgBB uploads to the ImgBB image host using its base64 form API.
type ImgBB struct {
	apiKey     string
	endpoint   string
	expiration time.Duration
	httpClient *http.Client
}

// NewImgBB constructs the backend; it fails fast on a missing API key.
func NewImgBB(opts ImgBBOptions) (*ImgBB, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("imgbb: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	endpoint := strings.TrimRight(opts.BaseURL, "/")
	if endpoint == "" {
		endpoint = "https://api.imgbb.com"
	}
	return &ImgBB{
		apiKey:     apiKey,
		endpoint:   endpoint + "/1/upload",
		expiration: opts.Expiration,
		httpClient: httpClient,
	}, nil
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL       string `json:"url"`
		DeleteURL string `json:"delete_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Status int `json:"status"`
}

// Upload sends the file as a base64 form field.
func (b *ImgBB) Upload(ctx context.Context, filePath string) (*Upload, error) {
	if _, err := statFile(filePath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("imgbb: read file: %w", err)
	}

	form := url.Values{}
	form.Set("key", b.apiKey)
	form.Set("image", base64.StdEncoding.EncodeToString(data))
	if b.expiration > 0 {
		form.Set("expiration", strconv.Itoa(int(b.expiration.Seconds())))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("imgbb: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imgbb: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imgbb: read response: %w", err)
	}
	var decoded imgbbResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("imgbb: decode response: %w", err)
	}
	if !decoded.Success {
		msg := strings.TrimSpace(decoded.Error.Message)
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("imgbb: upload rejected: %s", msg)
	}
	return &Upload{URL: decoded.Data.URL, DeleteURL: decoded.Data.DeleteURL}, nil
}

var _ Backend = (*ImgBB)(nil)
