package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// imageDescriber is the slice of the OpenRouter client this tool needs.
type imageDescriber interface {
	Describe(ctx context.Context, image, question string) (string, error)
}

// ImageDescTool answers questions about a reference photo through a vision
// model, so text-only agents can reason about the product shots.
type ImageDescTool struct {
	Describer imageDescriber
}

func (t *ImageDescTool) Name() string { return "get_image_description" }

func (t *ImageDescTool) Description() string {
	return "Describe an image. Provide 'image' (URL or local file path) and " +
		"optionally a 'question' about it; returns a detailed text description."
}

func (t *ImageDescTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"image": {"type": "string", "description": "URL or local path of the image."},
			"question": {"type": "string", "description": "Optional question to answer about the image."}
		},
		"required": ["image"]
	}`)
}

type imageDescArgs struct {
	Image    string `json:"image"`
	Question string `json:"question"`
}

func (t *ImageDescTool) Run(ctx context.Context, raw json.RawMessage) (string, error) {
	var args imageDescArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("get_image_description: decode arguments: %w", err)
	}
	if strings.TrimSpace(args.Image) == "" {
		return "", errors.New("get_image_description: image is required")
	}
	return t.Describer.Describe(ctx, args.Image, args.Question)
}

var _ Tool = (*ImageDescTool)(nil)
