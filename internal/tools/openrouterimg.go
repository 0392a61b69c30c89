package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"visualdna/internal/storage"
)

// imageChatGenerator is the slice of the OpenRouter client this tool needs.
type imageChatGenerator interface {
	GenerateImages(ctx context.Context, prompt string, references []string) ([]string, error)
}

// OpenRouterImageTool generates images through OpenRouter's chat-completions
// image modality. Results usually arrive as base64 data URLs, so saving
// decodes them locally instead of downloading.
type OpenRouterImageTool struct {
	Generator imageChatGenerator
	Store     *storage.FileStore
}

func (t *OpenRouterImageTool) Name() string { return "openrouter_image_generator" }

func (t *OpenRouterImageTool) Description() string {
	return "Generate images with an OpenRouter image model. Provide a text " +
		"'prompt'; optionally 'reference_images' (URLs or local paths, " +
		"embedded inline) and 'saved_images' filenames for writing results " +
		"to disk."
}

func (t *OpenRouterImageTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt": {"type": "string", "description": "Text description of the image to generate."},
			"reference_images": {"type": "array", "items": {"type": "string"}, "description": "Reference images to guide generation."},
			"saved_images": {"type": "array", "items": {"type": "string"}, "description": "Filenames for saving the generated images."}
		},
		"required": ["prompt"]
	}`)
}

type openRouterImageArgs struct {
	Prompt          string     `json:"prompt"`
	ReferenceImages StringList `json:"reference_images"`
	SavedImages     StringList `json:"saved_images"`
}

func (t *OpenRouterImageTool) Run(ctx context.Context, raw json.RawMessage) (string, error) {
	var args openRouterImageArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("openrouter_image_generator: decode arguments: %w", err)
	}
	urls, err := t.Generator.GenerateImages(ctx, args.Prompt, args.ReferenceImages)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "Image generation completed but no images were returned.", nil
	}
	if len(args.SavedImages) == 0 {
		return strings.Join(urls, "\n"), nil
	}
	if t.Store == nil {
		return "", errors.New("openrouter_image_generator: no output store configured")
	}

	n := len(urls)
	if len(args.SavedImages) < n {
		n = len(args.SavedImages)
	}
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		data, err := decodeDataURL(urls[i])
		if err != nil {
			return "", fmt.Errorf("openrouter_image_generator: result %d: %w", i+1, err)
		}
		key, err := t.Store.Write(ctx, args.SavedImages[i], data)
		if err != nil {
			return "", err
		}
		paths = append(paths, filepath.Join(t.Store.BasePath(), filepath.FromSlash(key)))
	}
	return strings.Join(paths, "\n"), nil
}

func decodeDataURL(url string) ([]byte, error) {
	if !strings.HasPrefix(url, "data:") {
		return nil, fmt.Errorf("expected data url, got %.32q", url)
	}
	_, encoded, ok := strings.Cut(url, ";base64,")
	if !ok {
		return nil, errors.New("data url is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

var _ Tool = (*OpenRouterImageTool)(nil)
