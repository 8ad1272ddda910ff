package imagecache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCache_GetFetchesOnce(t *testing.T) {
	var hits atomic.Int64
	srv := newServer(t, &hits)

	c, err := New(srv.URL+"/", 8, time.Second)
	require.NoError(t, err)

	e, err := c.Get(context.Background(), "/a/b/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/a/b/1.jpg", string(e.Data))
	assert.Equal(t, "image/jpeg", e.ContentType)

	_, err = c.Get(context.Background(), "a/b/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())
	assert.True(t, c.Contains("a/b/1.jpg"))
}

func TestCache_Evicts(t *testing.T) {
	var hits atomic.Int64
	srv := newServer(t, &hits)

	c, err := New(srv.URL, 2, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	for _, p := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		require.NoError(t, c.Prefetch(ctx, p))
	}
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains("1.jpg"))

	require.NoError(t, c.Prefetch(ctx, "3.jpg"))
	assert.Equal(t, int64(3), hits.Load())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Errors(t *testing.T) {
	var hits atomic.Int64
	srv := newServer(t, &hits)

	c, err := New(srv.URL, 2, time.Second)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "missing.jpg")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.False(t, c.Contains("missing.jpg"))

	_, err = c.Get(context.Background(), "")
	assert.Error(t, err)

	_, err = New(srv.URL, 0, time.Second)
	assert.Error(t, err)
}
