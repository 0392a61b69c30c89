// Package imagehost is a small self-hosted image host: multipart uploads in,
// public image URLs out. The pipeline's self-host upload backend talks to it.
package imagehost

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"visualdna/internal/infra"
	"visualdna/internal/storage"
)

type App struct {
	Store   *storage.FileStore
	BaseURL string
	Logger  infra.Logger
	// MaxUploadBytes caps multipart uploads. Default 10 MiB.
	MaxUploadBytes int64

	now func() time.Time
}

func NewApp(store *storage.FileStore, baseURL string, logger infra.Logger) *App {
	return &App{
		Store:   store,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Logger:  logger,
		now:     time.Now,
	}
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url,omitempty"`
	DeleteURL string `json:"delete_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, uploadResponse{Success: false, Error: msg})
}
