package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig collects what the HTTP API is built from
type RouterConfig struct {
	Store       GalleryStore
	Uploads     *services.UploadService
	Hub         *services.WebSocketHub
	ServiceName string

	// Optional
	HTTPMetrics    *observability.HTTPMetrics
	MetricsHandler http.Handler
}

// NewRouter builds the chi router serving the gallery API
func NewRouter(cfg RouterConfig) http.Handler {
	photoHandler := NewPhotoHandler(cfg.Store, cfg.Uploads)
	favoriteHandler := NewFavoriteHandler(cfg.Store)
	albumHandler := NewAlbumHandler(cfg.Store)
	healthHandler := NewHealthHandler(cfg.Store)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware(cfg.ServiceName))
	if cfg.HTTPMetrics != nil {
		r.Use(observability.MetricsMiddleware(cfg.HTTPMetrics))
	}

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/api/version", VersionHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireLoaded(cfg.Store))

		r.Route("/api/photos", func(r chi.Router) {
			r.Get("/", photoHandler.List)
			r.Post("/", photoHandler.Create)
			r.Post("/upload", photoHandler.Upload)
			r.Get("/{id}", photoHandler.Get)
			r.Delete("/{id}", photoHandler.Delete)
			r.Post("/{id}/favorite", favoriteHandler.Toggle)
		})

		r.Get("/api/favorites", favoriteHandler.List)

		r.Route("/api/albums", func(r chi.Router) {
			r.Get("/", albumHandler.List)
			r.Post("/", albumHandler.Create)
			r.Get("/{id}", albumHandler.Get)
			r.Put("/{id}", albumHandler.Update)
			r.Delete("/{id}", albumHandler.Delete)
			r.Get("/{id}/photos", albumHandler.ListPhotos)
			r.Post("/{id}/photos", albumHandler.AddPhotos)
			r.Put("/{id}/photos/{photoId}", albumHandler.AddPhoto)
			r.Delete("/{id}/photos/{photoId}", albumHandler.RemovePhoto)
		})
	})

	if cfg.Hub != nil {
		r.Get("/ws", NewWebSocketHandler(cfg.Hub).HandleConnection)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}

// requireLoaded answers 503 until the store has read its collections, so
// clients never see an empty gallery during startup.
func requireLoaded(store GalleryStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Loaded() {
				w.Header().Set("Retry-After", "1")
				respondError(w, http.StatusServiceUnavailable, "Gallery is not ready.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
