package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type Span struct {
	LatitudeDelta  float64 `json:"lat_delta"`
	LongitudeDelta float64 `json:"lon_delta"`
}

// Region is a map viewport: a center and an angular span. The zero Region means
// the map has not reported a region yet.
type Region struct {
	Center Coordinate `json:"center"`
	Span   Span       `json:"span"`
}

func (r Region) IsZero() bool {
	return r == Region{}
}

func (r Region) minDelta() float64 {
	if r.Span.LatitudeDelta < r.Span.LongitudeDelta {
		return r.Span.LatitudeDelta
	}
	return r.Span.LongitudeDelta
}

// Bound returns the unwrapped bounding box of the region in [lon, lat] order.
func (r Region) Bound() orb.Bound {
	halfLat := r.Span.LatitudeDelta / 2
	halfLon := r.Span.LongitudeDelta / 2
	return orb.Bound{
		Min: orb.Point{r.Center.Longitude - halfLon, r.Center.Latitude - halfLat},
		Max: orb.Point{r.Center.Longitude + halfLon, r.Center.Latitude + halfLat},
	}
}

func (r Region) Contains(c Coordinate) bool {
	b := r.Bound()
	if c.Latitude < b.Min.Lat() || c.Latitude > b.Max.Lat() {
		return false
	}
	if b.Min.Lon() >= -180 && b.Max.Lon() <= 180 {
		return c.Longitude >= b.Min.Lon() && c.Longitude <= b.Max.Lon()
	}
	// Region crosses the antimeridian.
	lon := c.Longitude
	for _, shift := range []float64{-360, 0, 360} {
		if lon+shift >= b.Min.Lon() && lon+shift <= b.Max.Lon() {
			return true
		}
	}
	return false
}

// Polygon returns the closed five point ring of the region's corners, each wrapped
// into canonical bounds. Points are [longitude, latitude] as the backend expects.
func (r Region) Polygon() orb.Polygon {
	b := r.Bound()
	corners := []Coordinate{
		{Latitude: b.Min.Lat(), Longitude: b.Min.Lon()},
		{Latitude: b.Min.Lat(), Longitude: b.Max.Lon()},
		{Latitude: b.Max.Lat(), Longitude: b.Max.Lon()},
		{Latitude: b.Max.Lat(), Longitude: b.Min.Lon()},
	}

	ring := make(orb.Ring, 0, len(corners)+1)
	for _, c := range corners {
		w := c.Wrapped()
		ring = append(ring, orb.Point{w.Longitude, w.Latitude})
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

func (r Region) GeoJSON() ([]byte, error) {
	data, err := json.Marshal(geojson.NewGeometry(r.Polygon()))
	if err != nil {
		return nil, fmt.Errorf("error marshaling region polygon: %w", err)
	}
	return data, nil
}
