package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

type boundsRequest struct {
	Geometry  json.RawMessage `json:"geometry"`
	Zoom      int             `json:"z"`
	Year      int             `json:"year"`
	Year2     int             `json:"year2"`
	LocalWork bool            `json:"localWork"`
}

type boundsResponse struct {
	Result struct {
		Photos   []photoDTO   `json:"photos"`
		Clusters []clusterDTO `json:"clusters"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type photoDTO struct {
	CID   int       `json:"cid"`
	File  string    `json:"file"`
	Title string    `json:"title"`
	Dir   string    `json:"dir"`
	Geo   []float64 `json:"geo"` // [lat, lon]
	Year  int       `json:"year"`
	Year2 int       `json:"year2"`
}

type clusterDTO struct {
	Count int       `json:"c"`
	Geo   []float64 `json:"geo"`
	Photo photoDTO  `json:"p"`
}

// PastVu loads annotations from the PastVu photo.getByBounds API. Transport
// errors and 5xx responses are retried with exponential backoff.
type PastVu struct {
	baseURL     string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewPastVu(baseURL string, timeout time.Duration, maxAttempts int, backoff time.Duration) *PastVu {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &PastVu{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (c *PastVu) Load(ctx context.Context, p Params) (Result, error) {
	geometry, err := p.Region.GeoJSON()
	if err != nil {
		return Result{}, err
	}
	params, err := json.Marshal(boundsRequest{
		Geometry:  geometry,
		Zoom:      p.Zoom(),
		Year:      p.Years.Lower,
		Year2:     p.Years.Upper,
		LocalWork: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("error encoding params: %w", err)
	}

	q := url.Values{}
	q.Set("method", "photo.getByBounds")
	q.Set("params", string(params))
	endpoint := c.baseURL + "/api2?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			slog.Debug("retrying annotation load", "attempt", attempt+1, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		res, retry, err := c.fetch(ctx, endpoint)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return Result{}, lastErr
}

func (c *PastVu) fetch(ctx context.Context, endpoint string) (Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, false, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, true, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= http.StatusInternalServerError
		return Result{}, retry, fmt.Errorf("%w: %d - status: %s", ErrUnexpectedStatus, resp.StatusCode, resp.Status)
	}

	var data boundsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Result{}, false, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if data.Error != nil {
		return Result{}, false, fmt.Errorf("api error: %s", data.Error.Message)
	}

	res, err := convert(data)
	return res, false, err
}

func convert(data boundsResponse) (Result, error) {
	res := Result{
		Images:   make([]models.Image, 0, len(data.Result.Photos)),
		Clusters: make([]models.ServerCluster, 0, len(data.Result.Clusters)),
	}

	for _, p := range data.Result.Photos {
		img, err := p.toImage(nil)
		if err != nil {
			return Result{}, err
		}
		res.Images = append(res.Images, img)
	}

	for _, c := range data.Result.Clusters {
		coord, err := geo.CoordinateFromArray(c.Geo)
		if err != nil {
			return Result{}, fmt.Errorf("cluster: %w", err)
		}
		preview, err := c.Photo.toImage(&coord)
		if err != nil {
			return Result{}, err
		}
		res.Clusters = append(res.Clusters, models.ServerCluster{
			Preview:    preview,
			Coordinate: coord,
			Count:      c.Count,
		})
	}
	return res, nil
}

// DecodePhotos reads a PastVu photo dump: a bare array of photos, an object with
// a "photos" array, or a full photo.getByBounds response.
func DecodePhotos(r io.Reader) ([]models.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading photos: %w", err)
	}

	var photos []photoDTO
	if err := json.Unmarshal(data, &photos); err != nil {
		var wrapped struct {
			Photos []photoDTO `json:"photos"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("error decoding photos: %w", err)
		}
		photos = wrapped.Photos
		if photos == nil {
			var resp boundsResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return nil, fmt.Errorf("error decoding photos: %w", err)
			}
			photos = resp.Result.Photos
		}
	}

	images := make([]models.Image, 0, len(photos))
	for _, p := range photos {
		img, err := p.toImage(nil)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// toImage converts a photo; fallback is used when a cluster preview carries no position.
func (p photoDTO) toImage(fallback *geo.Coordinate) (models.Image, error) {
	var coord geo.Coordinate
	if len(p.Geo) == 0 && fallback != nil {
		coord = *fallback
	} else {
		c, err := geo.CoordinateFromArray(p.Geo)
		if err != nil {
			return models.Image{}, fmt.Errorf("photo %d: %w", p.CID, err)
		}
		coord = c
	}

	year2 := p.Year2
	if year2 == 0 {
		year2 = p.Year
	}
	return models.Image{
		ID:         p.CID,
		Coordinate: coord,
		Year:       p.Year,
		Year2:      year2,
		Title:      p.Title,
		Direction:  models.ParseDirection(p.Dir),
		File:       p.File,
	}, nil
}
