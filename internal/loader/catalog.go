package loader

import (
	"context"
	"fmt"

	"github.com/mr1hm/go-pastvu-map/internal/clustering"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/repository"
)

const (
	// Below this zoom dense cells come back as server clusters.
	catalogClusterMaxZoom = 17
	catalogClusterMin     = 10
	catalogGridRatio      = 4
)

// Catalog answers loads from the local photo catalog, aggregating dense grid
// cells into server clusters at low zoom.
type Catalog struct {
	repo repository.PhotoRepository
}

func NewCatalog(repo repository.PhotoRepository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) Load(ctx context.Context, p Params) (Result, error) {
	bound := p.Region.Bound()
	years := p.Years
	images, err := c.repo.ListPhotos(ctx, repository.Filter{Bound: &bound, Years: &years})
	if err != nil {
		return Result{}, fmt.Errorf("error listing catalog photos: %w", err)
	}

	zoom := p.Zoom()
	if zoom >= catalogClusterMaxZoom {
		return Result{Images: images}, nil
	}

	size := geo.Delta(zoom, p.Viewport) / catalogGridRatio
	cells := make(map[clustering.Cell][]models.Image)
	var order []clustering.Cell
	for _, img := range images {
		cell := clustering.CellFor(img.Coordinate, size)
		if _, ok := cells[cell]; !ok {
			order = append(order, cell)
		}
		cells[cell] = append(cells[cell], img)
	}

	var res Result
	for _, cell := range order {
		members := cells[cell]
		if len(members) < catalogClusterMin {
			res.Images = append(res.Images, members...)
			continue
		}
		res.Clusters = append(res.Clusters, aggregate(members))
	}
	return res, nil
}

// aggregate builds a cluster centered on the mean position, previewed by the
// newest photo.
func aggregate(members []models.Image) models.ServerCluster {
	var lat, lon float64
	preview := members[0]
	for _, img := range members {
		lat += img.Coordinate.Latitude
		lon += img.Coordinate.Longitude
		if img.Year2 > preview.Year2 || (img.Year2 == preview.Year2 && img.ID > preview.ID) {
			preview = img
		}
	}
	n := float64(len(members))
	return models.ServerCluster{
		Preview:    preview,
		Coordinate: geo.Coordinate{Latitude: lat / n, Longitude: lon / n},
		Count:      len(members),
	}
}
