package annotation

import (
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Annotation is the object placed on the map surface. The surface owns it; the
// identity store only observes it.
//
// A map surface may merge overlapping annotations into a group of its own. Group
// annotations have no Key and list their Members.
type Annotation struct {
	Key     Key
	Members []*Annotation

	coordinate geo.Coordinate
}

func New(key Key) *Annotation {
	return &Annotation{Key: key, coordinate: key.Coordinate()}
}

func NewGroup(coordinate geo.Coordinate, members []*Annotation) *Annotation {
	return &Annotation{coordinate: coordinate, Members: members}
}

func (a *Annotation) IsGroup() bool {
	return a.Key.Kind == 0
}

func (a *Annotation) Coordinate() geo.Coordinate {
	return a.coordinate
}

func (a *Annotation) ID() string {
	if a.IsGroup() {
		return "group:" + a.coordinate.String()
	}
	return a.Key.String()
}

// Images flattens the annotation into the photos it represents. Server clusters
// contribute their preview photo.
func (a *Annotation) Images() []models.Image {
	if a.IsGroup() {
		var out []models.Image
		for _, m := range a.Members {
			out = append(out, m.Images()...)
		}
		return out
	}

	switch a.Key.Kind {
	case KindImage:
		return []models.Image{a.Key.Image}
	case KindServerCluster:
		return []models.Image{a.Key.ServerCluster.Preview}
	case KindLocalCluster:
		return a.Key.LocalCluster.Images.Sorted()
	default:
		return nil
	}
}

// Find returns the annotation for id among list, looking inside groups too.
func Find(list []*Annotation, id Identity) *Annotation {
	for _, a := range list {
		if a.IsGroup() {
			if found := Find(a.Members, id); found != nil {
				return found
			}
			continue
		}
		if a.Key.Identity() == id {
			return a
		}
	}
	return nil
}

// Flatten expands groups into their leaf annotations.
func Flatten(list []*Annotation) []*Annotation {
	out := make([]*Annotation, 0, len(list))
	for _, a := range list {
		if a.IsGroup() {
			out = append(out, Flatten(a.Members)...)
			continue
		}
		out = append(out, a)
	}
	return out
}
