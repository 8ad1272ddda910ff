// Package imagecache serves photo payloads keyed by their remote path, keeping
// recently used payloads in memory.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

const maxPayloadBytes = 16 << 20

type Entry struct {
	Data        []byte
	ContentType string
}

type Cache struct {
	baseURL string
	client  *http.Client
	entries *lru.Cache[string, Entry]
}

func New(baseURL string, size int, timeout time.Duration) (*Cache, error) {
	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("error creating image cache: %w", err)
	}
	return &Cache{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		entries: entries,
	}, nil
}

// Get returns the cached payload for path, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, path string) (Entry, error) {
	key := strings.TrimLeft(path, "/")
	if key == "" {
		return Entry{}, fmt.Errorf("empty image path")
	}
	if e, ok := c.entries.Get(key); ok {
		return e, nil
	}

	e, err := c.fetch(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	c.entries.Add(key, e)
	return e, nil
}

// Prefetch warms the cache for path.
func (c *Cache) Prefetch(ctx context.Context, path string) error {
	if c.Contains(path) {
		return nil
	}
	_, err := c.Get(ctx, path)
	return err
}

func (c *Cache) Contains(path string) bool {
	return c.entries.Contains(strings.TrimLeft(path, "/"))
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}

func (c *Cache) fetch(ctx context.Context, key string) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+key, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("%w: %d - status: %s", ErrUnexpectedStatus, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return Entry{}, fmt.Errorf("error reading resp.Body: %w", err)
	}

	slog.Debug("image fetched", "path", key, "bytes", len(data))
	return Entry{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}
