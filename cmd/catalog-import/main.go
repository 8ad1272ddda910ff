package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-pastvu-map/internal/config"
	"github.com/mr1hm/go-pastvu-map/internal/ingestion"
	"github.com/mr1hm/go-pastvu-map/internal/logging"
	"github.com/mr1hm/go-pastvu-map/internal/repository"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: catalog-import <photos.json | url> [...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, "catalog-import")

	db, err := repository.NewSQLiteDB(cfg.Catalog.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize catalog: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := ingestion.NewManager(cfg, db, nil)
	total := 0
	for _, source := range os.Args[1:] {
		added, err := mgr.ImportOnce(ctx, source)
		if err != nil {
			slog.Error("import failed", "source", source, "error", err)
			os.Exit(1)
		}
		total += added
	}

	slog.Info("import finished", "sources", len(os.Args)-1, "added", total, "catalog", cfg.Catalog.Path)
}
