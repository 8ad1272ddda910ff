package mapstate

import (
	"log/slog"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/reconcile"
)

func (s *Session) reduce(a Action) {
	switch a := a.(type) {
	case RegionChanged:
		s.regionChanged(a)
	case regionSettled:
		s.regionSettled(a.region)
	case LoadAnnotations:
		s.loadAnnotations()
	case loaded:
		s.loaded(a)
	case loadingFailed:
		s.loadingFailed(a)
	case UpdatePreviews:
		s.updatePreviews()
	case ClearAnnotations:
		s.clearAnnotations()
	case YearRangeChanged:
		s.debounce(yearRangeID, s.cfg.YearDebounce, yearRangeSettled{years: a.Years})
	case yearRangeSettled:
		s.yearRangeSettled(a.years)
	case MapTypeChanged:
		s.st.mapType = a.MapType
		s.surface.ApplyMapType(a.MapType)
	case AnnotationSelected:
		s.annotationSelected(a.Annotation)
	case AnnotationDeselected:
		s.st.selected = ""
	case PreviewClosed:
		s.st.selected = ""
		s.surface.DeselectAnnotations()
	case FocusOn:
		s.setRegion(geo.RegionFor(a.Coordinate, a.Zoom, s.cfg.Viewport), true)
	case LocationButtonTapped:
		s.locationButtonTapped()
	case NewLocationState:
		s.newLocationState(a.Location)
	case SettingsChanged:
		s.settingsChanged(a.Settings)
	case SheetInteracted:
		s.scheduler.Cancel(autoUnfoldID)
		s.st.minimized = a.Minimized
	case autoUnfold:
		if s.st.minimized {
			s.st.minimized = false
			s.emit(SetMinimized{Minimized: false})
		}
	case MemoryWarning:
		s.store.ClearAll()
		slog.Warn("memory warning, annotation store cleared")
	default:
		slog.Error("unhandled map action", "action", a)
	}
}

func (s *Session) zoom() int {
	return geo.Zoom(s.st.region, s.cfg.Viewport)
}

// setRegion moves the map and feeds the move back in, as a map view reports its
// own programmatic region changes.
func (s *Session) setRegion(region geo.Region, animated bool) {
	s.surface.SetRegion(region, animated)
	s.enqueue(RegionChanged{Region: region})
}

func (s *Session) regionChanged(a RegionChanged) {
	if a.ByUser {
		if !s.st.minimized {
			s.st.minimized = true
			s.emit(SetMinimized{Minimized: true})
		}
		s.debounce(autoUnfoldID, s.cfg.AutoUnfoldDelay, autoUnfold{})
	}
	s.debounce(regionChangedID, s.cfg.RegionDebounce, regionSettled{region: a.Region})
}

func (s *Session) regionSettled(region geo.Region) {
	previous := s.st.region
	if !previous.IsZero() && geo.Zoom(previous, s.cfg.Viewport) != geo.Zoom(region, s.cfg.Viewport) {
		// Cells are sized by zoom.
		s.enqueue(ClearAnnotations{})
	}
	s.st.region = region
	s.enqueue(LoadAnnotations{})
	s.debounce(updatePreviewsID, s.cfg.PreviewDebounce, UpdatePreviews{})
}

// yearRangeSettled reloads from scratch: clusters never shrink, so a narrower
// filter cannot be applied incrementally.
func (s *Session) yearRangeSettled(years models.YearRange) {
	if years == s.st.years {
		return
	}
	s.st.years = years
	s.enqueue(ClearAnnotations{})
	s.enqueue(LoadAnnotations{})
}

func (s *Session) loadAnnotations() {
	if s.st.region.IsZero() {
		return
	}
	params := loader.Params{Region: s.st.region, Years: s.st.years, Viewport: s.cfg.Viewport}
	if s.st.lastLoaded != nil && *s.st.lastLoaded == params {
		slog.Debug("region already loaded", "zoom", params.Zoom())
		return
	}
	if s.st.loading && s.st.inFlight != nil && *s.st.inFlight == params {
		slog.Debug("load already in flight", "zoom", params.Zoom(), "generation", s.st.generation)
		return
	}

	s.st.generation++
	s.st.loading = true
	s.st.inFlight = &params
	generation := s.st.generation
	ctx := s.loadCtx

	slog.Debug("loading annotations", "zoom", params.Zoom(), "generation", generation,
		"years_lower", params.Years.Lower, "years_upper", params.Years.Upper)

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		res, err := s.loader.Load(ctx, params)
		if err != nil {
			s.Send(loadingFailed{generation: generation, params: params, err: err})
			return
		}
		s.Send(loaded{generation: generation, params: params, result: res})
	}()
}

func (s *Session) loaded(a loaded) {
	if a.generation != s.st.generation {
		slog.Warn("discarding stale load", "generation", a.generation, "current", s.st.generation)
		return
	}
	zoom := a.params.Zoom()
	diff := reconcile.Compute(s.st.table, s.st.serverClusters, a.result.Images, a.result.Clusters, zoom)
	for _, img := range a.result.Images {
		s.st.images[img.ID] = img
	}
	params := a.params
	s.st.lastLoaded = &params
	s.st.inFlight = nil
	s.st.loading = false

	add, remove := reconcile.Materialize(s.store, s.surface.Annotations(), diff)
	s.surface.Remove(remove)
	s.surface.Add(add)
	pruned := s.store.Refresh()

	slog.Info("annotations reconciled", "zoom", zoom, "generation", a.generation,
		"added", len(add), "removed", len(remove), "pruned", pruned)
	s.enqueue(UpdatePreviews{})
}

func (s *Session) loadingFailed(a loadingFailed) {
	if a.generation != s.st.generation {
		slog.Warn("discarding stale load failure", "generation", a.generation, "error", a.err)
		return
	}
	s.st.loading = false
	s.st.inFlight = nil
	slog.Error("annotation load failed", "zoom", a.params.Zoom(), "generation", a.generation, "error", a.err)
	s.emit(PresentAlert{Title: "Unable to load photos", Message: a.err.Error()})
	// The settle-time preview update was skipped while loading.
	s.enqueue(UpdatePreviews{})
}

func (s *Session) clearAnnotations() {
	s.st.resetAnnotations()
	// Results of loads issued before the clear no longer apply.
	s.st.generation++
	s.st.loading = false
	s.store.ClearAll()
	s.surface.Clear()
	s.enqueue(UpdatePreviews{})
}

func (s *Session) annotationSelected(a *annotation.Annotation) {
	if a == nil {
		return
	}
	s.st.selected = a.ID()
	if a.IsGroup() {
		s.emit(OpenImageList{Images: a.Images()})
		return
	}

	switch a.Key.Kind {
	case annotation.KindImage:
		s.emit(PreviewImage{Image: a.Key.Image})
	case annotation.KindServerCluster:
		c := a.Key.ServerCluster
		if s.st.settings.OpenClusterPreviews {
			s.emit(PreviewImage{Image: c.Preview})
			return
		}
		s.st.selected = ""
		s.surface.DeselectAnnotations()
		s.setRegion(geo.RegionFor(c.Coordinate, s.zoom()+1, s.cfg.Viewport), true)
	case annotation.KindLocalCluster:
		s.emit(OpenImageList{Images: a.Images()})
	}
}

func (s *Session) locationButtonTapped() {
	loc := s.st.location
	switch {
	case loc.Coordinate != nil:
		s.setRegion(geo.RegionFor(*loc.Coordinate, LocationZoom, s.cfg.Viewport), true)
	case loc.Status == LocationDenied:
		s.emit(PresentAlert{
			Title:        "Location access denied",
			Message:      "Allow location access in Settings to see photos around you.",
			OpenSettings: true,
		})
	default:
		s.emit(PresentAlert{Title: "Location unavailable", Message: "Unable to determine your location."})
	}
}

func (s *Session) newLocationState(loc LocationState) {
	s.st.location = loc
	if loc.Coordinate == nil || s.st.locatedOnce {
		return
	}
	s.st.locatedOnce = true
	s.setRegion(geo.RegionFor(*loc.Coordinate, FirstLocationZoom, s.cfg.Viewport), true)
}

func (s *Session) settingsChanged(settings Settings) {
	if !settings.PreviewSort.Valid() {
		settings.PreviewSort = s.st.settings.PreviewSort
	}
	resort := settings.PreviewSort != s.st.settings.PreviewSort
	s.st.settings = settings
	if resort {
		s.enqueue(UpdatePreviews{})
	}
}
