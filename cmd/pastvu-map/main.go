package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-pastvu-map/internal/api"
	"github.com/mr1hm/go-pastvu-map/internal/config"
	"github.com/mr1hm/go-pastvu-map/internal/imagecache"
	"github.com/mr1hm/go-pastvu-map/internal/ingestion"
	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/logging"
	"github.com/mr1hm/go-pastvu-map/internal/mapstate"
	"github.com/mr1hm/go-pastvu-map/internal/repository"
	"github.com/mr1hm/go-pastvu-map/internal/stream"
	"github.com/mr1hm/go-pastvu-map/internal/surface"
	"github.com/mr1hm/go-pastvu-map/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, "pastvu-map")

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "source", cfg.Loader.Source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fans out surface changes and app actions to /api/stream clients
	broadcaster := stream.NewBroadcaster(100)

	var (
		ld  loader.Loader
		mgr *ingestion.Manager
	)
	switch cfg.Loader.Source {
	case config.SourceCatalog:
		db, err := repository.NewSQLiteDB(cfg.Catalog.Path)
		if err != nil {
			logging.Fatalf("Failed to initialize catalog: %v", err)
		}
		defer db.Close()

		mgr = ingestion.NewManager(cfg, db, broadcaster)
		mgr.Start(ctx)
		ld = loader.NewCatalog(db)
	default:
		ld = loader.NewPastVu(cfg.Loader.PastVuURL, cfg.Loader.Timeout, cfg.Loader.MaxAttempts, cfg.Loader.Backoff)
	}

	images, err := imagecache.New(cfg.Images.BaseURL, cfg.Images.CacheSize, cfg.Images.Timeout)
	if err != nil {
		logging.Fatalf("Failed to initialize image cache: %v", err)
	}
	thumbnails := worker.NewPool("thumbnails", cfg.Worker.Count, cfg.Worker.BufferSize, images.Prefetch)
	thumbnails.Start(ctx)

	mem := surface.NewMemory()
	mem.GroupRadius = cfg.Map.GroupRadius
	mem.OnChange = func(c surface.Change) {
		broadcaster.Broadcast(stream.Event{Kind: "surface", Data: c})
	}

	session := mapstate.New(mapstate.Config{
		Viewport: cfg.Viewport(),
		Years:    cfg.Years(),
		Settings: mapstate.Settings{
			OpenClusterPreviews: cfg.Map.OpenClusterPreviews,
			ShowYearColor:       cfg.Map.ShowYearColor,
			PreviewSort:         mapstate.SortOrder(cfg.Map.PreviewSort),
		},
		RegionDebounce:  cfg.Map.RegionDebounce,
		YearDebounce:    cfg.Map.YearDebounce,
		PreviewDebounce: cfg.Map.PreviewDebounce,
		AutoUnfoldDelay: cfg.Map.AutoUnfoldDelay,
	}, ld, mem)
	session.Prefetcher = thumbnails
	session.OnAppAction = func(a mapstate.AppAction) {
		broadcaster.Broadcast(stream.Event{Kind: a.Name(), Data: a})
	}

	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		if err := session.Run(ctx); err != nil {
			slog.Error("map session error", "error", err)
		}
	}()
	session.Send(mapstate.FocusOn{Coordinate: cfg.InitialCenter(), Zoom: cfg.Map.InitialZoom})

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(session, mem, images, broadcaster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	<-sessionDone
	thumbnails.Stop()
	if mgr != nil {
		mgr.Stop()
	}
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
