package hunyuan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// isRemoteURL reports whether the reference is already fetchable by the API.
func isRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// resolveImages maps each reference to a public URL, preserving order. URLs
// pass through untouched; local paths go through the upload backend, at most
// once per distinct absolute path for this client's lifetime.
func (c *Client) resolveImages(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		url, err := c.resolveImage(ctx, ref)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, url)
	}
	return resolved, nil
}

func (c *Client) resolveImage(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("hunyuan: empty reference image")
	}
	if isRemoteURL(ref) {
		return ref, nil
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", fmt.Errorf("hunyuan: resolve path %s: %w", ref, err)
	}
	if cached, ok := c.uploaded[abs]; ok {
		return cached, nil
	}
	if c.upload == nil {
		return "", fmt.Errorf("hunyuan: no upload backend configured for local image %s", ref)
	}
	c.logger.Debug().Str("path", abs).Msg("hunyuan: uploading reference image")
	result, err := c.upload.Upload(ctx, abs)
	if err != nil {
		return "", fmt.Errorf("hunyuan: upload reference image %s: %w", ref, err)
	}
	c.uploaded[abs] = result.URL
	c.logger.Debug().Str("path", abs).Str("url", result.URL).Msg("hunyuan: reference image uploaded")
	return result.URL, nil
}
