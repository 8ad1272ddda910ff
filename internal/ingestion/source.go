package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Fetch reads a photo dump from an http(s) URL or a local file.
func Fetch(ctx context.Context, source string) ([]models.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchURL(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", source, err)
	}
	defer f.Close()

	return loader.DecodePhotos(f)
}

func fetchURL(ctx context.Context, url string) ([]models.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{
		Timeout: 60 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	return loader.DecodePhotos(resp.Body)
}
