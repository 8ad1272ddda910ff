package surface

import (
	"math"
	"sync"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Memory is a headless map view. When GroupRadius is positive, visible
// annotations closer than GroupRadius times the region span are merged into
// groups the way a platform map view clusters overlapping markers.
type Memory struct {
	GroupRadius float64
	OnChange    func(Change)

	mu          sync.RWMutex
	annotations []*annotation.Annotation
	region      geo.Region
	mapType     models.MapType
	selected    *annotation.Annotation
}

func NewMemory() *Memory {
	return &Memory{mapType: models.MapTypeStandard}
}

func (m *Memory) notify(c Change) {
	if m.OnChange != nil {
		m.OnChange(c)
	}
}

func (m *Memory) Add(list []*annotation.Annotation) {
	if len(list) == 0 {
		return
	}
	ids := make([]string, 0, len(list))

	m.mu.Lock()
	present := make(map[*annotation.Annotation]bool, len(m.annotations))
	for _, a := range m.annotations {
		present[a] = true
	}
	for _, a := range list {
		if present[a] {
			continue
		}
		present[a] = true
		m.annotations = append(m.annotations, a)
		ids = append(ids, a.ID())
	}
	m.mu.Unlock()

	if len(ids) > 0 {
		m.notify(Change{Added: ids})
	}
}

func (m *Memory) Remove(list []*annotation.Annotation) {
	if len(list) == 0 {
		return
	}
	drop := make(map[*annotation.Annotation]bool, len(list))
	for _, a := range list {
		drop[a] = true
	}

	var ids []string
	m.mu.Lock()
	kept := m.annotations[:0]
	for _, a := range m.annotations {
		if drop[a] {
			ids = append(ids, a.ID())
			continue
		}
		kept = append(kept, a)
	}
	clear(m.annotations[len(kept):])
	m.annotations = kept
	if m.selected != nil && drop[m.selected] {
		m.selected = nil
	}
	m.mu.Unlock()

	if len(ids) > 0 {
		m.notify(Change{Removed: ids})
	}
}

func (m *Memory) Clear() {
	m.mu.Lock()
	clear(m.annotations)
	m.annotations = nil
	m.selected = nil
	m.mu.Unlock()

	m.notify(Change{Cleared: true})
}

func (m *Memory) SetRegion(region geo.Region, animated bool) {
	m.mu.Lock()
	m.region = region
	m.mu.Unlock()

	m.notify(Change{Region: &region, Animated: animated})
}

func (m *Memory) Region() geo.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.region
}

func (m *Memory) ApplyMapType(t models.MapType) {
	m.mu.Lock()
	m.mapType = t
	m.mu.Unlock()

	m.notify(Change{MapType: t})
}

func (m *Memory) MapType() models.MapType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mapType
}

func (m *Memory) Annotations() []*annotation.Annotation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*annotation.Annotation, len(m.annotations))
	copy(out, m.annotations)
	return out
}

func (m *Memory) VisibleAnnotations() []*annotation.Annotation {
	m.mu.RLock()
	region := m.region
	var visible []*annotation.Annotation
	for _, a := range m.annotations {
		if region.IsZero() || region.Contains(a.Coordinate()) {
			visible = append(visible, a)
		}
	}
	m.mu.RUnlock()

	if m.GroupRadius <= 0 || region.IsZero() {
		return visible
	}
	return group(visible, m.GroupRadius*math.Min(region.Span.LatitudeDelta, region.Span.LongitudeDelta))
}

// Select marks a as selected, as a tap on the map would.
func (m *Memory) Select(a *annotation.Annotation) {
	m.mu.Lock()
	m.selected = a
	m.mu.Unlock()
}

func (m *Memory) Selected() *annotation.Annotation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

func (m *Memory) DeselectAnnotations() {
	m.mu.Lock()
	m.selected = nil
	m.mu.Unlock()
}

// group greedily merges annotations within radius degrees of a seed annotation.
func group(list []*annotation.Annotation, radius float64) []*annotation.Annotation {
	used := make([]bool, len(list))
	var out []*annotation.Annotation
	for i, seed := range list {
		if used[i] {
			continue
		}
		used[i] = true
		members := []*annotation.Annotation{seed}
		for j := i + 1; j < len(list); j++ {
			if used[j] {
				continue
			}
			if closeTo(seed.Coordinate(), list[j].Coordinate(), radius) {
				used[j] = true
				members = append(members, list[j])
			}
		}
		if len(members) == 1 {
			out = append(out, seed)
			continue
		}
		out = append(out, annotation.NewGroup(seed.Coordinate(), members))
	}
	return out
}

func closeTo(a, b geo.Coordinate, radius float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= radius && math.Abs(a.Longitude-b.Longitude) <= radius
}
