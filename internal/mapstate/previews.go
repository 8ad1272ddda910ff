package mapstate

import (
	"log/slog"
	"sort"

	"github.com/golang/geo/s2"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

func (s *Session) updatePreviews() {
	if s.st.loading {
		slog.Debug("skipping preview update while loading")
		return
	}
	images := visibleImages(s.surface.VisibleAnnotations())
	sortImages(images, s.st.settings.PreviewSort, s.st.region.Center)
	s.st.previews = buildPreviews(images)

	for _, p := range s.st.previews {
		if p.Kind == PreviewImageCard && s.Prefetcher != nil && p.Image.File != "" {
			s.Prefetcher.TrySubmit(p.Image.ThumbnailPath())
		}
	}
}

// visibleImages flattens annotations, including surface groups, into distinct photos.
func visibleImages(list []*annotation.Annotation) []models.Image {
	seen := make(map[int]bool)
	var out []models.Image
	for _, a := range list {
		for _, img := range a.Images() {
			if seen[img.ID] {
				continue
			}
			seen[img.ID] = true
			out = append(out, img)
		}
	}
	return out
}

func sortImages(images []models.Image, order SortOrder, center geo.Coordinate) {
	switch order {
	case SortByYearAscending:
		sort.Slice(images, func(i, j int) bool {
			if images[i].Year != images[j].Year {
				return images[i].Year < images[j].Year
			}
			return images[i].ID < images[j].ID
		})
	case SortByYearDescending:
		sort.Slice(images, func(i, j int) bool {
			if images[i].Year != images[j].Year {
				return images[i].Year > images[j].Year
			}
			return images[i].ID < images[j].ID
		})
	default:
		origin := s2.LatLngFromDegrees(center.Latitude, center.Longitude)
		dist := make(map[int]float64, len(images))
		for _, img := range images {
			ll := s2.LatLngFromDegrees(img.Coordinate.Latitude, img.Coordinate.Longitude)
			dist[img.ID] = origin.Distance(ll).Radians()
		}
		sort.Slice(images, func(i, j int) bool {
			di, dj := dist[images[i].ID], dist[images[j].ID]
			if di != dj {
				return di < dj
			}
			return images[i].ID < images[j].ID
		})
	}
}

// buildPreviews keeps at most MaxPreviews cards, adding a view-as-list card
// when there are more, or a single no-images card when there are none.
func buildPreviews(images []models.Image) []Preview {
	if len(images) == 0 {
		return []Preview{{Kind: PreviewNoImages}}
	}
	n := min(len(images), MaxPreviews)
	out := make([]Preview, 0, n+1)
	for i := range n {
		img := images[i]
		out = append(out, Preview{Kind: PreviewImageCard, Image: &img})
	}
	if len(images) > MaxPreviews {
		out = append(out, Preview{Kind: PreviewViewAsList, Total: len(images)})
	}
	return out
}
