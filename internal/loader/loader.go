// Package loader fetches the photos and server clusters for a map region.
package loader

import (
	"context"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Params identify one load. They are comparable so a session can tell whether a
// load would repeat the last one.
type Params struct {
	Region   geo.Region
	Years    models.YearRange
	Viewport geo.Size
}

func (p Params) Zoom() int {
	return geo.Zoom(p.Region, p.Viewport)
}

type Result struct {
	Images   []models.Image
	Clusters []models.ServerCluster
}

type Loader interface {
	Load(ctx context.Context, p Params) (Result, error)
}
