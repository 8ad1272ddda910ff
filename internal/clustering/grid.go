// Package clustering groups photos into zoom-sized grid cells and decides, per cell,
// whether they are shown as bare points or as one local cluster.
package clustering

import (
	"math"
	"sort"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

const (
	// ClusterThreshold is the cell population at which bare points become a cluster.
	ClusterThreshold = 5

	cellRatio = 8
)

// ReferenceViewport fixes the cell size per zoom so grouping does not depend on
// the device the session runs on.
var ReferenceViewport = geo.Size{Width: 430, Height: 932}

type Cell struct {
	Lat  int64
	Lon  int64
	Size float64
}

func CellSize(zoom int) float64 {
	return geo.Delta(zoom, ReferenceViewport) / cellRatio
}

func CellFor(c geo.Coordinate, size float64) Cell {
	return Cell{
		Lat:  int64(math.Floor(c.Latitude / size)),
		Lon:  int64(math.Floor(c.Longitude / size)),
		Size: size,
	}
}

func (c Cell) Center() geo.Coordinate {
	return geo.Coordinate{
		Latitude:  (float64(c.Lat) + 0.5) * c.Size,
		Longitude: (float64(c.Lon) + 0.5) * c.Size,
	}.Wrapped()
}

func (c Cell) less(o Cell) bool {
	if c.Lat != o.Lat {
		return c.Lat < o.Lat
	}
	return c.Lon < o.Lon
}

// GroupImages assigns every image to exactly one cell for zoom.
func GroupImages(images []models.Image, zoom int) map[Cell]models.ImageSet {
	size := CellSize(zoom)
	groups := make(map[Cell]models.ImageSet)
	for _, img := range images {
		cell := CellFor(img.Coordinate, size)
		set, ok := groups[cell]
		if !ok {
			set = make(models.ImageSet)
			groups[cell] = set
		}
		set[img.ID] = img
	}
	return groups
}

func sortedCells[V any](m map[Cell]V) []Cell {
	cells := make([]Cell, 0, len(m))
	for c := range m {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].less(cells[j]) })
	return cells
}
