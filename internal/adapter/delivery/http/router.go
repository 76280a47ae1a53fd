// Package http provides the HTTP delivery layer for the shortlink service.
// It contains the handlers for shortening, redirecting, stats and metadata
// extraction together with request validation and response formatting.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shortlink/docs"
	"github.com/vadimbarashkov/shortlink/pkg/middleware/recoverer"
)

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the shortlink API.
// Short URLs returned by POST /shorten are built as baseURL + "/" + slug.
func NewRouter(
	logger *httplog.Logger,
	baseURL string,
	slugUC slugUseCase,
	visitUC visitUseCase,
	metadataUC metadataUseCase,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, docs.FS, "swagger.yml")
	})

	validate := newValidator()
	sh := newSlugHandler(baseURL, slugUC, visitUC, validate)
	mh := newMetadataHandler(metadataUC, validate)

	r.Post("/shorten", sh.shorten)
	r.Post("/metadata", mh.extract)

	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", sh.redirect)
		r.Get("/stats", sh.stats)
	})

	return r
}
