package loader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-pastvu-map/internal/clustering"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/repository"
)

var testViewport = geo.Size{Width: 390, Height: 844}

func testParams(zoom int) Params {
	return Params{
		Region:   geo.RegionFor(geo.Coordinate{Latitude: 55.75, Longitude: 37.62}, zoom, testViewport),
		Years:    models.YearRange{Lower: 1900, Upper: 1950},
		Viewport: testViewport,
	}
}

const okBody = `{"result":{
	"photos":[{"cid":1,"file":"a/b/1.jpg","title":"Red Square","dir":"n","geo":[55.75,37.62],"year":1910,"year2":1915},
	          {"cid":2,"file":"a/b/2.jpg","title":"Arbat","dir":"weird","geo":[55.74,37.59],"year":1930}],
	"clusters":[{"c":42,"geo":[55.7,37.5],"p":{"cid":3,"file":"a/b/3.jpg","title":"Preview","year":1905,"year2":1905}}]}}`

func TestPastVu_Load(t *testing.T) {
	var captured boundsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2", r.URL.Path)
		assert.Equal(t, "photo.getByBounds", r.URL.Query().Get("method"))
		assert.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("params")), &captured))
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := NewPastVu(srv.URL, time.Second, 1, time.Millisecond)
	res, err := c.Load(context.Background(), testParams(14))
	require.NoError(t, err)

	assert.Equal(t, 14, captured.Zoom)
	assert.Equal(t, 1900, captured.Year)
	assert.Equal(t, 1950, captured.Year2)
	assert.Contains(t, string(captured.Geometry), `"Polygon"`)

	require.Len(t, res.Images, 2)
	assert.Equal(t, geo.Coordinate{Latitude: 55.75, Longitude: 37.62}, res.Images[0].Coordinate)
	assert.Equal(t, models.DirectionNorth, res.Images[0].Direction)
	assert.Equal(t, models.DirectionUnknown, res.Images[1].Direction)
	assert.Equal(t, 1930, res.Images[1].Year2, "missing year2 falls back to year")

	require.Len(t, res.Clusters, 1)
	assert.Equal(t, 42, res.Clusters[0].Count)
	assert.Equal(t, 3, res.Clusters[0].Preview.ID)
	assert.Equal(t, res.Clusters[0].Coordinate, res.Clusters[0].Preview.Coordinate)
}

func TestPastVu_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	c := NewPastVu(srv.URL, time.Second, 3, time.Millisecond)
	res, err := c.Load(context.Background(), testParams(14))
	require.NoError(t, err)
	assert.Len(t, res.Images, 2)
	assert.Equal(t, int64(3), calls.Load())
}

func TestPastVu_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewPastVu(srv.URL, time.Second, 5, time.Millisecond)
	_, err := c.Load(context.Background(), testParams(14))
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Equal(t, int64(1), calls.Load())
}

func TestPastVu_MalformedCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"photos":[{"cid":1,"geo":[55.7]}]}}`))
	}))
	defer srv.Close()

	c := NewPastVu(srv.URL, time.Second, 3, time.Millisecond)
	_, err := c.Load(context.Background(), testParams(14))
	assert.True(t, errors.Is(err, geo.ErrInvalidInput))
}

func TestPastVu_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"bad geometry"}}`))
	}))
	defer srv.Close()

	c := NewPastVu(srv.URL, time.Second, 1, time.Millisecond)
	_, err := c.Load(context.Background(), testParams(14))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad geometry")
}

func TestCatalog_Load(t *testing.T) {
	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	size := geo.Delta(12, testViewport) / catalogGridRatio
	center := clustering.CellFor(geo.Coordinate{Latitude: 55.75, Longitude: 37.62}, size).Center()
	other := geo.Coordinate{Latitude: center.Latitude + 0.05, Longitude: center.Longitude}

	var photos []models.Image
	for i := 0; i < 12; i++ {
		photos = append(photos, models.Image{
			ID:         i + 1,
			Coordinate: geo.Coordinate{Latitude: center.Latitude + float64(i)*1e-5, Longitude: center.Longitude},
			Year:       1900 + i,
			Year2:      1900 + i,
			File:       "x.jpg",
		})
	}
	photos = append(photos,
		models.Image{ID: 100, Coordinate: other, Year: 1920, Year2: 1920},
		models.Image{ID: 101, Coordinate: other, Year: 1990, Year2: 1990},
	)
	_, err = db.AddBatch(ctx, photos)
	require.NoError(t, err)

	c := NewCatalog(db)

	p := Params{Region: geo.RegionFor(center, 12, testViewport), Years: models.YearRange{Lower: 1900, Upper: 1950}, Viewport: testViewport}
	res, err := c.Load(ctx, p)
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, 12, res.Clusters[0].Count)
	assert.Equal(t, 12, res.Clusters[0].Preview.ID, "newest photo previews the cluster")
	require.Len(t, res.Images, 1, "photo 101 is outside the year filter")
	assert.Equal(t, 100, res.Images[0].ID)

	p.Region = geo.RegionFor(center, 18, testViewport)
	res, err = c.Load(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.NotEmpty(t, res.Images)
}

func TestDecodePhotos(t *testing.T) {
	inputs := []string{
		`[{"cid":1,"geo":[55.7,37.6],"year":1900}]`,
		`{"photos":[{"cid":1,"geo":[55.7,37.6],"year":1900}]}`,
		`{"result":{"photos":[{"cid":1,"geo":[55.7,37.6],"year":1900}]}}`,
	}
	for _, in := range inputs {
		images, err := DecodePhotos(strings.NewReader(in))
		require.NoError(t, err, in)
		require.Len(t, images, 1, in)
		assert.Equal(t, 1900, images[0].Year2)
	}

	_, err := DecodePhotos(strings.NewReader(`[{"cid":1,"geo":[1,2,3]}]`))
	assert.True(t, errors.Is(err, geo.ErrInvalidInput))

	_, err = DecodePhotos(strings.NewReader(`not json`))
	assert.Error(t, err)
}
