package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourcePastVu, cfg.Loader.Source)
	assert.Equal(t, 150*time.Millisecond, cfg.Map.RegionDebounce)
	assert.Equal(t, 300*time.Millisecond, cfg.Map.PreviewDebounce)
	assert.NoError(t, cfg.Years().Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOADER_SOURCE", "catalog")
	t.Setenv("YEAR_LOWER", "1900")
	t.Setenv("YEAR_UPPER", "1950")
	t.Setenv("VIEWPORT_WIDTH", "1024")
	t.Setenv("PASTVU_BACKOFF", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, cfg.Loader.Source)
	assert.Equal(t, 1900, cfg.Years().Lower)
	assert.Equal(t, 1024.0, cfg.Viewport().Width)
	assert.Equal(t, 2*time.Second, cfg.Loader.Backoff)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "70000"},
		{"LOG_LEVEL", "verbose"},
		{"LOADER_SOURCE", "flickr"},
		{"YEAR_LOWER", "1990"},
		{"INITIAL_ZOOM", "25"},
		{"PREVIEW_SORT", "random"},
		{"PASTVU_MAX_ATTEMPTS", "0"},
		{"CATALOG_SYNC_INTERVAL", "10s"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			switch tt.key {
			case "YEAR_LOWER":
				t.Setenv("YEAR_UPPER", "1950")
			case "CATALOG_SYNC_INTERVAL":
				t.Setenv("CATALOG_SYNC_URL", "https://example.com/photos.json")
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
