// Package uploader turns local image files into publicly reachable URLs.
// The Hunyuan job API only accepts http/https references, so every local
// reference image has to pass through one of these backends first.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Upload is the outcome of a successful upload. The URL is always present;
// DeleteURL is set only by backends that hand out a removal link.
type Upload struct {
	URL       string
	DeleteURL string
}

// Backend uploads a single local file and reports the resulting URL.
// Implementations do not retry; the caller decides what a failure means.
type Backend interface {
	Upload(ctx context.Context, filePath string) (*Upload, error)
}

// ErrFileTooLarge is returned when a backend's documented size cap is
// exceeded before any network call is made.
var ErrFileTooLarge = errors.New("uploader: file exceeds backend size limit")

// statFile verifies the file exists and returns its size. Shared precondition
// for all backends so a missing file never turns into a network error.
func statFile(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("uploader: file does not exist: %s", filePath)
		}
		return 0, fmt.Errorf("uploader: stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("uploader: %s is a directory", filePath)
	}
	return info.Size(), nil
}
