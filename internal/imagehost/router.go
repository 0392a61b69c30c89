package imagehost

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)

	r.Get("/healthz", app.Health)
	r.Post("/api/upload", app.Upload)
	r.Get("/api/delete/*", app.Delete)
	r.Get("/images/*", app.Serve)

	return r
}
