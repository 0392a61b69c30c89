package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// smmsMaxFileSize is SM.MS's documented per-image limit.
const smmsMaxFileSize = 5 << 20

// SMMSOptions configures the SM.MS backend. The service needs no credentials.
type SMMSOptions struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// SMMS uploads to the SM.MS free image host.
type SMMS struct {
	endpoint   string
	httpClient *http.Client
}

// NewSMMS constructs the backend with sane defaults.
func NewSMMS(opts SMMSOptions) *SMMS {
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
		endpoint = "https://sm.ms"
	}
	return &SMMS{
		endpoint:   endpoint + "/api/v2/upload",
		httpClient: httpClient,
	}
}

type smmsResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		URL    string `json:"url"`
		Delete string `json:"delete"`
	} `json:"data"`
	// On "image_repeated" the existing URL arrives here instead of in data.
	Images string `json:"images"`
}

// Upload posts the file as multipart form data.
func (s *SMMS) Upload(ctx context.Context, filePath string) (*Upload, error) {
	size, err := statFile(filePath)
	if err != nil {
		return nil, err
	}
	if size > smmsMaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (smms cap is %d)", ErrFileTooLarge, size, smmsMaxFileSize)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("smms: open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("smfile", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("smms: build form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("smms: read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("smms: finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("smms: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smms: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("smms: read response: %w", err)
	}
	var decoded smmsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("smms: decode response: %w", err)
	}
	switch {
	case decoded.Success:
		return &Upload{URL: decoded.Data.URL, DeleteURL: decoded.Data.Delete}, nil
	case decoded.Code == "image_repeated":
		// The image already exists; SM.MS returns the existing URL.
		return &Upload{URL: decoded.Images}, nil
	default:
		msg := strings.TrimSpace(decoded.Message)
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("smms: upload rejected: %s", msg)
	}
}

var _ Backend = (*SMMS)(nil)
