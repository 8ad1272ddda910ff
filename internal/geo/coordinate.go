package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// CoordinateFromArray parses a [latitude, longitude] pair as sent by the backend.
func CoordinateFromArray(values []float64) (Coordinate, error) {
	if len(values) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate array has %d elements, want 2: %w", len(values), ErrInvalidInput)
	}
	return Coordinate{Latitude: values[0], Longitude: values[1]}, nil
}

// Wrapped returns c with longitude wrapped into [-180, 180] and latitude clamped to [-90, 90].
func (c Coordinate) Wrapped() Coordinate {
	lon := c.Longitude
	if lon < -180 || lon > 180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return Coordinate{
		Latitude:  math.Max(-90, math.Min(90, c.Latitude)),
		Longitude: lon,
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
