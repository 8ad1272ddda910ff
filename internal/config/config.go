package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

const (
	SourcePastVu  = "pastvu"
	SourceCatalog = "catalog"
)

type Config struct {
	Server  ServerConfig
	Map     MapConfig
	Loader  LoaderConfig
	Catalog CatalogConfig
	Images  ImagesConfig
	Worker  WorkerConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int
}

type MapConfig struct {
	ViewportWidth       float64
	ViewportHeight      float64
	InitialLatitude     float64
	InitialLongitude    float64
	InitialZoom         int
	YearLower           int
	YearUpper           int
	RegionDebounce      time.Duration
	YearDebounce        time.Duration
	PreviewDebounce     time.Duration
	AutoUnfoldDelay     time.Duration
	PreviewSort         string
	OpenClusterPreviews bool
	ShowYearColor       bool
	GroupRadius         float64
}

type LoaderConfig struct {
	Source      string
	PastVuURL   string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

type CatalogConfig struct {
	Path         string
	SyncURL      string
	SyncInterval time.Duration
	BatchSize    int
}

type ImagesConfig struct {
	BaseURL   string
	CacheSize int
	Timeout   time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		Map: MapConfig{
			ViewportWidth:       getEnvFloat("VIEWPORT_WIDTH", 390),
			ViewportHeight:      getEnvFloat("VIEWPORT_HEIGHT", 844),
			InitialLatitude:     getEnvFloat("INITIAL_LATITUDE", 55.7522),
			InitialLongitude:    getEnvFloat("INITIAL_LONGITUDE", 37.6156),
			InitialZoom:         getEnvInt("INITIAL_ZOOM", 12),
			YearLower:           getEnvInt("YEAR_LOWER", models.MinYear),
			YearUpper:           getEnvInt("YEAR_UPPER", models.MaxYear),
			RegionDebounce:      getEnvDuration("REGION_DEBOUNCE", 150*time.Millisecond),
			YearDebounce:        getEnvDuration("YEAR_DEBOUNCE", 150*time.Millisecond),
			PreviewDebounce:     getEnvDuration("PREVIEW_DEBOUNCE", 300*time.Millisecond),
			AutoUnfoldDelay:     getEnvDuration("AUTO_UNFOLD_DELAY", 1500*time.Millisecond),
			PreviewSort:         getEnv("PREVIEW_SORT", "distance"),
			OpenClusterPreviews: getEnvBool("OPEN_CLUSTER_PREVIEWS", false),
			ShowYearColor:       getEnvBool("SHOW_YEAR_COLOR", true),
			GroupRadius:         getEnvFloat("SURFACE_GROUP_RADIUS", 0.03),
		},
		Loader: LoaderConfig{
			Source:      getEnv("LOADER_SOURCE", SourcePastVu),
			PastVuURL:   getEnv("PASTVU_URL", "https://pastvu.com"),
			Timeout:     getEnvDuration("PASTVU_TIMEOUT", 10*time.Second),
			MaxAttempts: getEnvInt("PASTVU_MAX_ATTEMPTS", 3),
			Backoff:     getEnvDuration("PASTVU_BACKOFF", 500*time.Millisecond),
		},
		Catalog: CatalogConfig{
			Path:         getEnv("CATALOG_PATH", "./data/pastvu-catalog.db"),
			SyncURL:      getEnv("CATALOG_SYNC_URL", ""),
			SyncInterval: getEnvDuration("CATALOG_SYNC_INTERVAL", time.Hour),
			BatchSize:    getEnvInt("CATALOG_BATCH_SIZE", 500),
		},
		Images: ImagesConfig{
			BaseURL:   getEnv("IMAGES_URL", "https://pastvu.com"),
			CacheSize: getEnvInt("IMAGE_CACHE_SIZE", 256),
			Timeout:   getEnvDuration("IMAGES_TIMEOUT", 15*time.Second),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Viewport() geo.Size {
	return geo.Size{Width: c.Map.ViewportWidth, Height: c.Map.ViewportHeight}
}

func (c *Config) Years() models.YearRange {
	return models.YearRange{Lower: c.Map.YearLower, Upper: c.Map.YearUpper}
}

func (c *Config) InitialCenter() geo.Coordinate {
	return geo.Coordinate{Latitude: c.Map.InitialLatitude, Longitude: c.Map.InitialLongitude}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Map.ViewportWidth <= 0 || c.Map.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must have a positive size")
	}
	if c.Map.InitialZoom < geo.MinZoom || c.Map.InitialZoom > geo.MaxZoom {
		return fmt.Errorf("initial zoom must be between %d and %d", geo.MinZoom, geo.MaxZoom)
	}
	if err := c.Years().Validate(); err != nil {
		return fmt.Errorf("invalid year range: %w", err)
	}
	switch c.Map.PreviewSort {
	case "distance", "yearAscending", "yearDescending":
	default:
		return fmt.Errorf("invalid preview sort: %s", c.Map.PreviewSort)
	}

	switch c.Loader.Source {
	case SourcePastVu, SourceCatalog:
	default:
		return fmt.Errorf("invalid loader source: %s", c.Loader.Source)
	}
	if c.Loader.MaxAttempts < 1 {
		return fmt.Errorf("PastVu max attempts must be at least 1")
	}

	if c.Catalog.SyncURL != "" && c.Catalog.SyncInterval < time.Minute {
		return fmt.Errorf("catalog sync interval must be at least 1 minute")
	}
	if c.Catalog.BatchSize < 1 {
		return fmt.Errorf("catalog batch size must be at least 1")
	}

	if c.Images.CacheSize < 1 {
		return fmt.Errorf("image cache size must be at least 1")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
