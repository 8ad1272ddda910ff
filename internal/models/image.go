package models

import (
	"sort"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
)

type Direction string

const (
	DirectionNorth     Direction = "n"
	DirectionNorthEast Direction = "ne"
	DirectionEast      Direction = "e"
	DirectionSouthEast Direction = "se"
	DirectionSouth     Direction = "s"
	DirectionSouthWest Direction = "sw"
	DirectionWest      Direction = "w"
	DirectionNorthWest Direction = "nw"
	DirectionAerial    Direction = "aero"
	DirectionUnknown   Direction = ""
)

func ParseDirection(s string) Direction {
	switch d := Direction(s); d {
	case DirectionNorth, DirectionNorthEast, DirectionEast, DirectionSouthEast,
		DirectionSouth, DirectionSouthWest, DirectionWest, DirectionNorthWest, DirectionAerial:
		return d
	default:
		return DirectionUnknown
	}
}

// Image is a geotagged photo. Two images with the same ID are the same photo
// regardless of the other fields.
type Image struct {
	ID         int            `json:"cid"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Year       int            `json:"year"`
	Year2      int            `json:"year2"`
	Title      string         `json:"title"`
	Direction  Direction      `json:"dir,omitempty"`
	File       string         `json:"file"` // remote path of the image payload
}

// ThumbnailPath and StandardPath locate the payload variants on the image server.
func (i Image) ThumbnailPath() string {
	return "_p/h/" + i.File
}

func (i Image) StandardPath() string {
	return "_p/d/" + i.File
}

func (i Image) Same(other Image) bool {
	return i.ID == other.ID
}

// ImageSet holds images keyed by ID.
type ImageSet map[int]Image

func NewImageSet(images ...Image) ImageSet {
	s := make(ImageSet, len(images))
	for _, img := range images {
		s[img.ID] = img
	}
	return s
}

func (s ImageSet) Contains(img Image) bool {
	_, ok := s[img.ID]
	return ok
}

// Minus returns the images of s that are not in other.
func (s ImageSet) Minus(other ImageSet) ImageSet {
	out := make(ImageSet)
	for id, img := range s {
		if _, ok := other[id]; !ok {
			out[id] = img
		}
	}
	return out
}

func (s ImageSet) Union(other ImageSet) ImageSet {
	out := make(ImageSet, len(s)+len(other))
	for id, img := range s {
		out[id] = img
	}
	for id, img := range other {
		out[id] = img
	}
	return out
}

// Sorted returns the images ordered by ID.
func (s ImageSet) Sorted() []Image {
	out := make([]Image, 0, len(s))
	for _, img := range s {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
