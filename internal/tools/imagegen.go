package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"visualdna/internal/hunyuan"
	"visualdna/internal/storage"
)

// jobGenerator is the slice of the Hunyuan client this tool needs.
type jobGenerator interface {
	Generate(ctx context.Context, req hunyuan.JobRequest, pollInterval time.Duration, maxPolls int) (*hunyuan.ImageGenerationResult, error)
}

// HunyuanImageTool generates listing images through the Hunyuan job client.
// When the model names output files, results are downloaded into the store
// with a .txt sidecar recording the prompt and reference images.
type HunyuanImageTool struct {
	Generator    jobGenerator
	Store        *storage.FileStore
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxPolls     int
}

func (t *HunyuanImageTool) Name() string { return "hunyuan_image_generator" }

func (t *HunyuanImageTool) Description() string {
	return "Generate images with the Hunyuan text-to-image model. Provide a " +
		"text 'prompt' (Chinese is recommended, max 8192 characters); " +
		"optionally a 'resolution' like 1024:1024, up to 3 'reference_images' " +
		"(http/https URLs or local file paths), and 'saved_images' filenames. " +
		"With saved_images the results are written to disk and the paths " +
		"returned; otherwise the image URLs are returned."
}

func (t *HunyuanImageTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt": {"type": "string", "description": "Text description of the image to generate."},
			"resolution": {"type": "string", "description": "Resolution as 'width:height'. Default 1024:1024."},
			"reference_images": {"type": "array", "items": {"type": "string"}, "description": "Reference images for image-to-image guidance. Max 3."},
			"saved_images": {"type": "array", "items": {"type": "string"}, "description": "Filenames for saving the generated images."}
		},
		"required": ["prompt"]
	}`)
}

type imageGenArgs struct {
	Prompt          string     `json:"prompt"`
	Resolution      string     `json:"resolution"`
	ReferenceImages StringList `json:"reference_images"`
	SavedImages     StringList `json:"saved_images"`
}

func (t *HunyuanImageTool) Run(ctx context.Context, raw json.RawMessage) (string, error) {
	var args imageGenArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("hunyuan_image_generator: decode arguments: %w", err)
	}
	resolution := strings.TrimSpace(args.Resolution)
	if resolution == "" {
		resolution = "1024:1024"
	}
	pollInterval := t.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxPolls := t.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 60
	}

	result, err := t.Generator.Generate(ctx, hunyuan.JobRequest{
		Prompt:     args.Prompt,
		Resolution: resolution,
		Images:     args.ReferenceImages,
		Revise:     true,
	}, pollInterval, maxPolls)
	if err != nil {
		return "", err
	}
	if len(result.ImageURLs) == 0 {
		return "Image generation completed but no image URLs were returned.", nil
	}
	if len(args.SavedImages) == 0 {
		return strings.Join(result.ImageURLs, "\n"), nil
	}
	return t.saveImages(ctx, result.ImageURLs, args)
}

func (t *HunyuanImageTool) saveImages(ctx context.Context, urls []string, args imageGenArgs) (string, error) {
	if t.Store == nil {
		return "", errors.New("hunyuan_image_generator: no output store configured")
	}
	httpClient := t.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	n := len(urls)
	if len(args.SavedImages) < n {
		n = len(args.SavedImages)
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		data, err := download(ctx, httpClient, urls[i])
		if err != nil {
			return "", fmt.Errorf("hunyuan_image_generator: download result %d: %w", i+1, err)
		}
		key, err := t.Store.Write(ctx, args.SavedImages[i], data)
		if err != nil {
			return "", err
		}
		if err := t.writeSidecar(ctx, key, args); err != nil {
			return "", err
		}
		paths = append(paths, filepath.Join(t.Store.BasePath(), filepath.FromSlash(key)))
	}
	return strings.Join(paths, "\n"), nil
}

// writeSidecar records the prompt and references next to the saved image so
// a shot can be reproduced later.
func (t *HunyuanImageTool) writeSidecar(ctx context.Context, imageKey string, args imageGenArgs) error {
	var b strings.Builder
	b.WriteString("Reference Images: ")
	if len(args.ReferenceImages) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(args.ReferenceImages, "\n"))
	}
	b.WriteString("\nPrompt: ")
	b.WriteString(args.Prompt)
	b.WriteString("\n")

	ext := filepath.Ext(imageKey)
	sidecarKey := strings.TrimSuffix(imageKey, ext) + ".txt"
	_, err := t.Store.Write(ctx, sidecarKey, []byte(b.String()))
	return err
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ Tool = (*HunyuanImageTool)(nil)
