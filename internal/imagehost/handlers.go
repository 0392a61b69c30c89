package imagehost

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Upload accepts a multipart "file" field and stores it under a generated key.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := a.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		a.fail(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	key := fmt.Sprintf("uploads/%s_%s%s",
		a.now().Format("20060102_150405"), uuid.NewString()[:8], ext)

	stored, err := a.Store.WriteFrom(r.Context(), key, file)
	if err != nil {
		a.Logger.Error().Err(err).Str("key", key).Msg("store upload")
		a.fail(w, http.StatusInternalServerError, "store file")
		return
	}
	a.Logger.Info().Str("key", stored).Int64("size", header.Size).Msg("image uploaded")
	a.json(w, http.StatusOK, uploadResponse{
		Success:   true,
		URL:       a.BaseURL + "/images/" + stored,
		DeleteURL: a.BaseURL + "/api/delete/" + stored,
	})
}

// Serve streams a stored image back.
func (a *App) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	rc, err := a.Store.Open(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		a.Logger.Warn().Err(err).Str("key", key).Msg("serve image")
	}
}

// Delete removes a stored image by its delete URL.
func (a *App) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := a.Store.Remove(key); err != nil {
		a.Logger.Error().Err(err).Str("key", key).Msg("delete image")
		a.fail(w, http.StatusInternalServerError, "delete file")
		return
	}
	a.json(w, http.StatusOK, uploadResponse{Success: true})
}

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
