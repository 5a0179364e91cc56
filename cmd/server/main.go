package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/photogallery/server/docs"
	"github.com/photogallery/server/internal/config"
	"github.com/photogallery/server/internal/handlers"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/services"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const serviceName = "gallery-server"

// @title Gallery Server API
// @version 1.0
// @description Photos, favorites and albums of a single gallery profile.
// @BasePath /
func main() {
	if err := run(); err != nil {
		observability.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.GetLogger()
	logger.SetLevel(observability.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	telemetry, err := observability.Initialize(ctx, observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: handlers.Version,
		Environment:    cfg.Telemetry.Environment,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		ExportInterval: cfg.Telemetry.ExportInterval(),
		Attributes:     []attribute.KeyValue{attribute.String("gallery.storage.backend", cfg.Storage.Backend)},
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Telemetry shutdown: %v", err)
		}
	}()

	// Storage and store
	kv, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	galleryMetrics, err := observability.NewGalleryMetrics()
	if err != nil {
		return err
	}
	store := services.NewPhotoAlbumStore(kv,
		services.WithMetrics(galleryMetrics),
		services.WithLogger(logger),
		services.WithWriteTimeout(cfg.Storage.WriteTimeout()),
	)

	hub := services.NewWebSocketHub()
	unsubscribe := store.Subscribe(hub.PublishChange)
	defer unsubscribe()

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Store:          store,
		Uploads:        services.NewUploadService(cfg.Upload.AllowedExtensions, cfg.Upload.MaxFileSizeMB),
		Hub:            hub,
		ServiceName:    serviceName,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: observability.PrometheusHandler(observability.NewPrometheusRegistry(store.Counts)),
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // Longer for uploads
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	// Requests are answered with 503 until the collections are read.
	g.Go(func() error {
		start := time.Now()
		if err := store.Load(gctx); err != nil {
			return err
		}
		logger.Debugf("Gallery loaded in %s", time.Since(start))
		return nil
	})

	g.Go(func() error {
		logger.Infof("Gallery server %s starting on %s", handlers.Version, cfg.ServerAddress)
		logger.Infof("Storage backend: %s", cfg.Storage.Backend)
		logger.Infof("Max upload size: %dMB", cfg.Upload.MaxFileSizeMB)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
