// Package annotation holds the map annotation objects and the identity store that
// keeps at most one live object per photo, server cluster or local cluster.
package annotation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

type Kind int

const (
	KindImage Kind = iota + 1
	KindServerCluster
	KindLocalCluster
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindServerCluster:
		return "cluster"
	case KindLocalCluster:
		return "local"
	default:
		return "unknown"
	}
}

// Key names the entity an annotation stands for and carries its payload.
// Keys are compared through Identity.
type Key struct {
	Kind          Kind
	Image         models.Image
	ServerCluster models.ServerCluster
	LocalCluster  models.LocalCluster
}

// Identity is the comparable part of a Key.
type Identity struct {
	Kind       Kind
	ImageID    int
	Coordinate geo.Coordinate
	Count      int
	ClusterID  uuid.UUID
}

func ImageKey(img models.Image) Key {
	return Key{Kind: KindImage, Image: img}
}

func ServerClusterKey(c models.ServerCluster) Key {
	return Key{Kind: KindServerCluster, ServerCluster: c}
}

func LocalClusterKey(c models.LocalCluster) Key {
	return Key{Kind: KindLocalCluster, LocalCluster: c}
}

func (k Key) Identity() Identity {
	switch k.Kind {
	case KindImage:
		return Identity{Kind: KindImage, ImageID: k.Image.ID}
	case KindServerCluster:
		return Identity{
			Kind:       KindServerCluster,
			ImageID:    k.ServerCluster.Preview.ID,
			Coordinate: k.ServerCluster.Coordinate,
			Count:      k.ServerCluster.Count,
		}
	case KindLocalCluster:
		return Identity{Kind: KindLocalCluster, ClusterID: k.LocalCluster.ID}
	default:
		return Identity{}
	}
}

func (k Key) Equal(other Key) bool {
	return k.Identity() == other.Identity()
}

func (k Key) Coordinate() geo.Coordinate {
	switch k.Kind {
	case KindImage:
		return k.Image.Coordinate
	case KindServerCluster:
		return k.ServerCluster.Coordinate
	case KindLocalCluster:
		return k.LocalCluster.Coordinate
	default:
		return geo.Coordinate{}
	}
}

// String is the stable external ID of the key, used by the HTTP API.
func (k Key) String() string {
	id := k.Identity()
	switch k.Kind {
	case KindImage:
		return fmt.Sprintf("image:%d", id.ImageID)
	case KindServerCluster:
		return fmt.Sprintf("cluster:%d:%s:%d", id.ImageID, id.Coordinate, id.Count)
	case KindLocalCluster:
		return "local:" + id.ClusterID.String()
	default:
		return "unknown"
	}
}
