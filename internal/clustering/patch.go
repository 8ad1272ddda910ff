package clustering

import (
	"fmt"

	"github.com/mr1hm/go-pastvu-map/internal/models"
)

type Patch interface {
	Cell() Cell
}

// AddImages shows the images as bare points.
type AddImages struct {
	At     Cell
	Images models.ImageSet
}

// AddCluster promotes a cell to a cluster. Removing lists the bare points that
// were shown for the cell before.
type AddCluster struct {
	At       Cell
	Cluster  models.LocalCluster
	Removing models.ImageSet
}

// AddImagesToCluster regrows a cluster. Previous is the value currently shown;
// Cluster replaces it under a new identity.
type AddImagesToCluster struct {
	At       Cell
	Images   models.ImageSet
	Previous models.LocalCluster
	Cluster  models.LocalCluster
}

func (p AddImages) Cell() Cell          { return p.At }
func (p AddCluster) Cell() Cell         { return p.At }
func (p AddImagesToCluster) Cell() Cell { return p.At }

// Decide compares the images observed in a cell with the cell's current state.
// It returns false when nothing changes.
func Decide(cell Cell, newImages models.ImageSet, current CellState) (Patch, bool) {
	switch cur := current.(type) {
	case nil:
		if len(newImages) == 0 {
			return nil, false
		}
		if len(newImages) < ClusterThreshold {
			return AddImages{At: cell, Images: newImages}, true
		}
		return AddCluster{
			At:       cell,
			Cluster:  models.NewLocalCluster(cell.Center(), newImages),
			Removing: models.ImageSet{},
		}, true

	case BareImages:
		toAdd := newImages.Minus(cur.Images)
		if len(toAdd) == 0 {
			return nil, false
		}
		all := cur.Images.Union(toAdd)
		if len(all) < ClusterThreshold {
			return AddImages{At: cell, Images: toAdd}, true
		}
		return AddCluster{
			At:       cell,
			Cluster:  models.NewLocalCluster(cell.Center(), all),
			Removing: cur.Images,
		}, true

	case Clustered:
		toAdd := newImages.Minus(cur.Cluster.Images)
		if len(toAdd) == 0 {
			return nil, false
		}
		return AddImagesToCluster{
			At:       cell,
			Images:   toAdd,
			Previous: cur.Cluster,
			Cluster:  cur.Cluster.Adding(toAdd),
		}, true

	default:
		panic(fmt.Sprintf("clustering: unknown cell state %T", current))
	}
}

// Plan decides patches for every observed cell, in a stable cell order.
func Plan(table Table, observed map[Cell]models.ImageSet) []Patch {
	var patches []Patch
	for _, cell := range sortedCells(observed) {
		if p, ok := Decide(cell, observed[cell], table[cell]); ok {
			patches = append(patches, p)
		}
	}
	return patches
}

type Changes struct {
	AddedImages     []models.Image
	AddedClusters   []models.LocalCluster
	RemovedImages   []models.Image
	RemovedClusters []models.LocalCluster
}

func (c Changes) Empty() bool {
	return len(c.AddedImages) == 0 && len(c.AddedClusters) == 0 &&
		len(c.RemovedImages) == 0 && len(c.RemovedClusters) == 0
}

// Apply installs patches into table and reports what has to be added to and
// removed from the map. A patch that does not match its cell's state is a logic
// error and panics.
func Apply(table Table, patches []Patch) Changes {
	var ch Changes
	for _, p := range patches {
		cell := p.Cell()
		switch p := p.(type) {
		case AddImages:
			merged := p.Images
			switch cur := table[cell].(type) {
			case nil:
			case BareImages:
				merged = cur.Images.Union(p.Images)
			default:
				panic(fmt.Sprintf("clustering: AddImages on clustered cell %+v", cell))
			}
			table[cell] = BareImages{Images: merged}
			ch.AddedImages = append(ch.AddedImages, p.Images.Sorted()...)

		case AddCluster:
			if _, clustered := table[cell].(Clustered); clustered {
				panic(fmt.Sprintf("clustering: AddCluster on clustered cell %+v", cell))
			}
			table[cell] = Clustered{Cluster: p.Cluster}
			ch.AddedClusters = append(ch.AddedClusters, p.Cluster)
			ch.RemovedImages = append(ch.RemovedImages, p.Removing.Sorted()...)

		case AddImagesToCluster:
			cur, ok := table[cell].(Clustered)
			if !ok || !cur.Cluster.Equal(p.Previous) {
				panic(fmt.Sprintf("clustering: AddImagesToCluster on stale cell %+v", cell))
			}
			table[cell] = Clustered{Cluster: p.Cluster}
			ch.AddedClusters = append(ch.AddedClusters, p.Cluster)
			ch.RemovedClusters = append(ch.RemovedClusters, p.Previous)

		default:
			panic(fmt.Sprintf("clustering: unknown patch %T", p))
		}
	}
	return ch
}
