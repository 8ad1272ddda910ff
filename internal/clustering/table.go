package clustering

import "github.com/mr1hm/go-pastvu-map/internal/models"

// CellState is either BareImages or Clustered, never both.
type CellState interface {
	isCellState()
}

type BareImages struct {
	Images models.ImageSet
}

type Clustered struct {
	Cluster models.LocalCluster
}

func (BareImages) isCellState() {}
func (Clustered) isCellState()  {}

// Table is the per-cell state of what the map currently shows for local grouping.
type Table map[Cell]CellState

// Images returns every image represented in the table, bare or clustered.
func (t Table) Images() models.ImageSet {
	out := make(models.ImageSet)
	for _, st := range t {
		switch st := st.(type) {
		case BareImages:
			for id, img := range st.Images {
				out[id] = img
			}
		case Clustered:
			for id, img := range st.Cluster.Images {
				out[id] = img
			}
		}
	}
	return out
}

func (t Table) Clusters() []models.LocalCluster {
	var out []models.LocalCluster
	for _, c := range sortedCells(t) {
		if st, ok := t[c].(Clustered); ok {
			out = append(out, st.Cluster)
		}
	}
	return out
}
