package models

import (
	"github.com/google/uuid"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
)

// ServerCluster is a backend-side aggregate. It is compared structurally.
type ServerCluster struct {
	Preview    Image          `json:"preview"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Count      int            `json:"count"`
}

func (c ServerCluster) Equal(other ServerCluster) bool {
	return c.Preview.Same(other.Preview) && c.Coordinate == other.Coordinate && c.Count == other.Count
}

// LocalCluster groups the images of one grid cell once the cell is dense enough.
// Every mutation produces a value with a new ID; clusters compare by ID only.
type LocalCluster struct {
	ID         uuid.UUID
	Coordinate geo.Coordinate
	Images     ImageSet
}

func NewLocalCluster(coordinate geo.Coordinate, images ImageSet) LocalCluster {
	return LocalCluster{
		ID:         uuid.New(),
		Coordinate: coordinate,
		Images:     images,
	}
}

// Adding returns a regrown copy of c with a fresh identity.
func (c LocalCluster) Adding(images ImageSet) LocalCluster {
	return NewLocalCluster(c.Coordinate, c.Images.Union(images))
}

func (c LocalCluster) Equal(other LocalCluster) bool {
	return c.ID == other.ID
}

func (c LocalCluster) Count() int {
	return len(c.Images)
}
