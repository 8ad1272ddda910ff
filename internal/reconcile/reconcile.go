// Package reconcile turns freshly loaded photos and server clusters into the
// minimal set of annotations to add to and remove from the map.
package reconcile

import (
	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/clustering"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

type Diff struct {
	Add    []annotation.Key
	Remove []annotation.Key
}

func (d Diff) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// ServerClusters is the set of server clusters already on the map.
type ServerClusters map[annotation.Identity]models.ServerCluster

// Compute diffs loaded data against what is shown. Photos go through grid
// clustering at zoom and table is updated in place; server clusters are a plain
// set difference against known, which is extended with the new ones.
func Compute(table clustering.Table, known ServerClusters, images []models.Image, clusters []models.ServerCluster, zoom int) Diff {
	var d Diff

	for _, c := range clusters {
		key := annotation.ServerClusterKey(c)
		id := key.Identity()
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = c
		d.Add = append(d.Add, key)
	}

	ch := clustering.Apply(table, clustering.Plan(table, clustering.GroupImages(images, zoom)))

	for _, img := range ch.AddedImages {
		d.Add = append(d.Add, annotation.ImageKey(img))
	}
	for _, c := range ch.AddedClusters {
		d.Add = append(d.Add, annotation.LocalClusterKey(c))
	}
	for _, img := range ch.RemovedImages {
		d.Remove = append(d.Remove, annotation.ImageKey(img))
	}
	for _, c := range ch.RemovedClusters {
		d.Remove = append(d.Remove, annotation.LocalClusterKey(c))
	}

	return d
}

// Materialize resolves the diff into annotation objects. Added keys are created
// or fetched through the store. Removed keys are looked up in the store first and
// then among the shown annotations, including surface groups; keys found in
// neither are already gone and are skipped.
func Materialize(store *annotation.Store, shown []*annotation.Annotation, d Diff) (add, remove []*annotation.Annotation) {
	add = make([]*annotation.Annotation, 0, len(d.Add))
	for _, key := range d.Add {
		add = append(add, store.Create(key))
	}

	for _, key := range d.Remove {
		a := store.Existing(key)
		if a == nil {
			a = annotation.Find(shown, key.Identity())
		}
		if a != nil {
			remove = append(remove, a)
		}
	}
	return add, remove
}
