package api

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

func toGeoJSON(list []*annotation.Annotation, yearColor bool) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, a := range list {
		c := a.Coordinate()
		f := geojson.NewFeature(orb.Point{c.Longitude, c.Latitude})
		f.ID = a.ID()
		f.Properties["id"] = a.ID()

		images := a.Images()
		var preview *models.Image
		if len(images) > 0 {
			preview = &images[0]
		}

		switch {
		case a.IsGroup():
			f.Properties["kind"] = "group"
			f.Properties["count"] = len(images)
		case a.Key.Kind == annotation.KindServerCluster:
			f.Properties["kind"] = a.Key.Kind.String()
			f.Properties["count"] = a.Key.ServerCluster.Count
		default:
			f.Properties["kind"] = a.Key.Kind.String()
			f.Properties["count"] = len(images)
		}

		if preview != nil {
			f.Properties["cid"] = preview.ID
			f.Properties["title"] = preview.Title
			f.Properties["year"] = preview.Year
			f.Properties["year2"] = preview.Year2
			f.Properties["file"] = preview.File
			if preview.Direction != models.DirectionUnknown {
				f.Properties["dir"] = string(preview.Direction)
			}
			if yearColor {
				f.Properties["year_color"] = models.YearColor(preview.Year)
			}
		}

		fc.Append(f)
	}

	return fc.MarshalJSON()
}
