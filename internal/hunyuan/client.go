// Package hunyuan is a client for the Tencent Hunyuan text-to-image API
// (aiart). Generation is asynchronous on the provider side: a job is
// submitted, then its status is polled until it completes or fails. Generate
// folds that protocol into a single blocking call.
package hunyuan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"visualdna/internal/infra"
	"visualdna/internal/uploader"
)

// ErrMissingCredentials indicates the client was configured without a
// Tencent Cloud secret pair.
var ErrMissingCredentials = errors.New("hunyuan: secret id and key are required")

const apiVersion = "2022-12-29"

// Options configures the Hunyuan client.
type Options struct {
	SecretID  string
	SecretKey string
	Region    string
	BaseURL   string
	// Uploader resolves local reference-image paths into public URLs. May be
	// nil when only URL references are ever used.
	Uploader       uploader.Backend
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs signed HTTP calls to the aiart endpoint. One client owns
// one upload cache; it is not safe for concurrent use.
type Client struct {
	secretID   string
	secretKey  string
	region     string
	baseURL    string
	host       string
	upload     uploader.Backend
	httpClient *http.Client
	logger     *infra.Logger
	// uploaded memoizes absolute local path -> public URL for the lifetime of
	// this client, so each distinct reference image is uploaded at most once.
	uploaded map[string]string
	now      func() time.Time
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://aiart.tencentcloudapi.com"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("hunyuan: invalid base url: %s", baseURL)
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "ap-guangzhou"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		secretID:   strings.TrimSpace(opts.SecretID),
		secretKey:  strings.TrimSpace(opts.SecretKey),
		region:     region,
		baseURL:    baseURL,
		host:       parsed.Host,
		upload:     opts.Uploader,
		httpClient: httpClient,
		logger:     logger,
		uploaded:   make(map[string]string),
		now:        time.Now,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.secretID != "" && c.secretKey != ""
}

type submitJobRequest struct {
	Prompt     string   `json:"Prompt"`
	Resolution string   `json:"Resolution,omitempty"`
	LogoAdd    int      `json:"LogoAdd"`
	Revise     int      `json:"Revise"`
	Images     []string `json:"Images,omitempty"`
	Seed       *int     `json:"Seed,omitempty"`
}

type submitJobResponse struct {
	JobID     string `json:"JobId"`
	RequestID string `json:"RequestId"`
}

type queryJobRequest struct {
	JobID string `json:"JobId"`
}

type queryJobResponse struct {
	JobStatusCode string   `json:"JobStatusCode"`
	JobStatusMsg  string   `json:"JobStatusMsg"`
	JobErrorCode  string   `json:"JobErrorCode"`
	JobErrorMsg   string   `json:"JobErrorMsg"`
	ResultImage   []string `json:"ResultImage"`
	ResultDetails []string `json:"ResultDetails"`
	RevisedPrompt []string `json:"RevisedPrompt"`
	RequestID     string   `json:"RequestId"`
}

type wireError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type responseEnvelope struct {
	Response json.RawMessage `json:"Response"`
}

type errorProbe struct {
	Error     *wireError `json:"Error"`
	RequestID string     `json:"RequestId"`
}

// SubmitJob submits a text-to-image job and returns its identifier. Local
// reference-image paths are resolved to URLs first; order is preserved.
func (c *Client) SubmitJob(ctx context.Context, req JobRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("hunyuan: prompt is required")
	}
	images, err := c.resolveImages(ctx, req.Images)
	if err != nil {
		return "", err
	}
	payload := submitJobRequest{
		Prompt:     req.Prompt,
		Resolution: strings.TrimSpace(req.Resolution),
		LogoAdd:    boolToFlag(req.LogoAdd),
		Revise:     boolToFlag(req.Revise),
		Images:     images,
		Seed:       req.Seed,
	}
	var out submitJobResponse
	if err := c.call(ctx, "SubmitTextToImageJob", payload, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", errors.New("hunyuan: empty job id in response")
	}
	c.logger.Debug().
		Str("job_id", out.JobID).
		Str("request_id", out.RequestID).
		Int("images", len(images)).
		Msg("hunyuan: job submitted")
	return out.JobID, nil
}

// QueryJob performs a single status query. It is a pure read of remote state;
// callers decide whether to query again.
func (c *Client) QueryJob(ctx context.Context, jobID string) (*ImageGenerationResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, errors.New("hunyuan: job id is required")
	}
	var out queryJobResponse
	if err := c.call(ctx, "QueryTextToImageJob", queryJobRequest{JobID: jobID}, &out); err != nil {
		return nil, err
	}
	return &ImageGenerationResult{
		JobID:          jobID,
		StatusCode:     out.JobStatusCode,
		StatusMsg:      out.JobStatusMsg,
		ImageURLs:      out.ResultImage,
		ErrorCode:      out.JobErrorCode,
		ErrorMsg:       out.JobErrorMsg,
		ResultDetails:  out.ResultDetails,
		RevisedPrompts: out.RevisedPrompt,
		RequestID:      out.RequestID,
	}, nil
}

// Generate submits the job and polls it to a terminal state. A completed
// result is returned as-is; a failed job becomes a *JobError; exhausting
// maxPolls becomes a *TimeoutError naming the job. The sleep between polls
// honors ctx cancellation.
func (c *Client) Generate(ctx context.Context, req JobRequest, pollInterval time.Duration, maxPolls int) (*ImageGenerationResult, error) {
	if maxPolls <= 0 {
		return nil, fmt.Errorf("hunyuan: max polls must be positive, got %d", maxPolls)
	}
	jobID, err := c.SubmitJob(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxPolls; i++ {
		result, err := c.QueryJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if result.Completed() {
			c.logger.Debug().Str("job_id", jobID).Int("polls", i+1).Msg("hunyuan: job completed")
			return result, nil
		}
		if result.Failed() {
			return nil, &JobError{JobID: jobID, Code: result.ErrorCode, Message: result.ErrorMsg}
		}
		c.logger.Debug().
			Str("job_id", jobID).
			Str("status", result.StatusMsg).
			Int("poll", i+1).
			Int("max_polls", maxPolls).
			Msg("hunyuan: job pending")
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, &TimeoutError{JobID: jobID, Polls: maxPolls}
}

// call signs and executes one API action, unwrapping the response envelope.
func (c *Client) call(ctx context.Context, action string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hunyuan: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hunyuan: build request: %w", err)
	}
	now := c.now()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Host", c.host)
	httpReq.Header.Set("X-TC-Action", action)
	httpReq.Header.Set("X-TC-Version", apiVersion)
	httpReq.Header.Set("X-TC-Region", c.region)
	httpReq.Header.Set("X-TC-Timestamp", fmt.Sprintf("%d", now.Unix()))
	httpReq.Header.Set("Authorization", authorization(c.secretID, c.secretKey, c.host, action, body, now))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("hunyuan: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hunyuan: read response: %w", err)
	}
	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("hunyuan: decode response: %w", err)
	}
	if len(envelope.Response) == 0 {
		return fmt.Errorf("hunyuan: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var probe errorProbe
	if err := json.Unmarshal(envelope.Response, &probe); err == nil && probe.Error != nil {
		return &APIError{Code: probe.Error.Code, Message: probe.Error.Message, RequestID: probe.RequestID}
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("hunyuan: decode %s response: %w", action, err)
	}
	return nil
}

func boolToFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
