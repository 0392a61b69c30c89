package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SelfHostOptions configures the backend that talks to cmd/imagehost.
type SelfHostOptions struct {
	// BaseURL of a running image host, e.g. "http://localhost:8080".
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// SelfHost uploads to this repository's own image host. Handy in development
// when the free hosts are rate limited or the bucket is not reachable.
type SelfHost struct {
	endpoint   string
	httpClient *http.Client
}

// NewSelfHost constructs the backend; the image host base URL is mandatory.
func NewSelfHost(opts SelfHostOptions) (*SelfHost, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("selfhost: image host base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &SelfHost{
		endpoint:   baseURL + "/api/upload",
		httpClient: httpClient,
	}, nil
}

type selfHostResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url"`
	DeleteURL string `json:"delete_url"`
	Error     string `json:"error"`
}

// Upload posts the file as multipart form data to the image host.
func (s *SelfHost) Upload(ctx context.Context, filePath string) (*Upload, error) {
	if _, err := statFile(filePath); err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("selfhost: open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("selfhost: build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("selfhost: read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("selfhost: finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("selfhost: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("selfhost: http request: %w", err)
	}
	defer resp.Body.Close()

	var decoded selfHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("selfhost: decode response: %w", err)
	}
	if !decoded.Success {
		msg := strings.TrimSpace(decoded.Error)
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("selfhost: upload rejected: %s", msg)
	}
	return &Upload{URL: decoded.URL, DeleteURL: decoded.DeleteURL}, nil
}

var _ Backend = (*SelfHost)(nil)
