// Package surface defines what the map state machine needs from a map view and
// provides a headless in-memory implementation.
package surface

import (
	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Surface is the map view. It is the only strong owner of the annotations it shows.
type Surface interface {
	Add(annotations []*annotation.Annotation)
	Remove(annotations []*annotation.Annotation)
	// Clear removes every annotation except the user location marker.
	Clear()
	SetRegion(region geo.Region, animated bool)
	ApplyMapType(t models.MapType)
	// Annotations returns everything on the map; VisibleAnnotations only what is
	// inside the current region, possibly merged into surface groups.
	Annotations() []*annotation.Annotation
	VisibleAnnotations() []*annotation.Annotation
	DeselectAnnotations()
}

type Change struct {
	Added    []string       `json:"added,omitempty"`
	Removed  []string       `json:"removed,omitempty"`
	Cleared  bool           `json:"cleared,omitempty"`
	Region   *geo.Region    `json:"region,omitempty"`
	Animated bool           `json:"animated,omitempty"`
	MapType  models.MapType `json:"map_type,omitempty"`
}
