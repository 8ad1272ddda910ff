package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/config"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/repository"
	"github.com/mr1hm/go-pastvu-map/internal/stream"
	"github.com/mr1hm/go-pastvu-map/internal/worker"
)

// Manager keeps the photo catalog filled from PastVu photo dumps, either once
// or by polling a sync URL.
type Manager struct {
	cfg         *config.Config
	repo        repository.PhotoRepository
	broadcaster *stream.Broadcaster
	pool        *worker.Pool[[]models.Image]
	wg          sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.PhotoRepository, broadcaster *stream.Broadcaster) *Manager {
	return &Manager{
		cfg:         cfg,
		repo:        repo,
		broadcaster: broadcaster,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewPool("catalog", m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.store)
	m.pool.Start(ctx)

	if m.cfg.Catalog.SyncURL != "" {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Catalog.SyncURL, m.cfg.Catalog.SyncInterval)
	}
}

func (m *Manager) store(ctx context.Context, batch []models.Image) error {
	added, err := m.repo.AddBatch(ctx, batch)
	if err != nil {
		slog.Error("error adding photos", "count", len(batch), "error", err)
		return err
	}
	if added == 0 {
		return nil
	}

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(stream.Event{Kind: "catalogUpdated", Data: map[string]int{"added": added}})
	}
	slog.Info("added photos", "added", added, "batch", len(batch))
	return nil
}

// ImportOnce loads source into the catalog synchronously and returns how many
// photos were new.
func (m *Manager) ImportOnce(ctx context.Context, source string) (int, error) {
	images, err := Fetch(ctx, source)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, batch := range batches(images, m.cfg.Catalog.BatchSize) {
		added, err := m.repo.AddBatch(ctx, batch)
		if err != nil {
			return total, fmt.Errorf("error importing photos: %w", err)
		}
		total += added
	}
	slog.Info("catalog import complete", "source", source, "photos", len(images), "added", total)
	return total, nil
}

func (m *Manager) runPoller(ctx context.Context, url string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting catalog poller", "url", url, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.poll(ctx, url)

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx, url)
		}
	}
}

func (m *Manager) poll(ctx context.Context, url string) {
	slog.Debug("polling catalog", "url", url)

	images, err := Fetch(ctx, url)
	if err != nil {
		slog.Error("catalog poll failed", "url", url, "error", err)
		return
	}

	for _, batch := range batches(images, m.cfg.Catalog.BatchSize) {
		if !m.pool.Submit(batch) {
			return
		}
	}

	slog.Debug("catalog poll complete", "count", len(images))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("catalog manager stopped")
}

func batches(images []models.Image, size int) [][]models.Image {
	if size < 1 {
		size = len(images)
	}
	var out [][]models.Image
	for start := 0; start < len(images); start += size {
		out = append(out, images[start:min(start+size, len(images))])
	}
	return out
}
