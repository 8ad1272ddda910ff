package mapstate

import (
	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/models"
)

// Action is anything the session loop reduces.
type Action interface {
	isAction()
}

// RegionChanged is reported by the map surface on every movement. ByUser marks
// gestures, which minimize the preview sheet.
type RegionChanged struct {
	Region geo.Region
	ByUser bool
}

type LoadAnnotations struct{}

type UpdatePreviews struct{}

type ClearAnnotations struct{}

type YearRangeChanged struct {
	Years models.YearRange
}

type MapTypeChanged struct {
	MapType models.MapType
}

// AnnotationSelected carries the annotation the user tapped, which may be a
// surface group.
type AnnotationSelected struct {
	Annotation *annotation.Annotation
}

type AnnotationDeselected struct{}

type LocationButtonTapped struct{}

type NewLocationState struct {
	Location LocationState
}

type FocusOn struct {
	Coordinate geo.Coordinate
	Zoom       int
}

type PreviewClosed struct{}

type SettingsChanged struct {
	Settings Settings
}

// SheetInteracted reports that the user moved the preview sheet themselves.
type SheetInteracted struct {
	Minimized bool
}

type MemoryWarning struct{}

type regionSettled struct {
	region geo.Region
}

type yearRangeSettled struct {
	years models.YearRange
}

type loaded struct {
	generation uint64
	params     loader.Params
	result     loader.Result
}

type loadingFailed struct {
	generation uint64
	params     loader.Params
	err        error
}

type autoUnfold struct{}

func (RegionChanged) isAction()        {}
func (LoadAnnotations) isAction()      {}
func (UpdatePreviews) isAction()       {}
func (ClearAnnotations) isAction()     {}
func (YearRangeChanged) isAction()     {}
func (MapTypeChanged) isAction()       {}
func (AnnotationSelected) isAction()   {}
func (AnnotationDeselected) isAction() {}
func (LocationButtonTapped) isAction() {}
func (NewLocationState) isAction()     {}
func (FocusOn) isAction()              {}
func (PreviewClosed) isAction()        {}
func (SettingsChanged) isAction()      {}
func (SheetInteracted) isAction()      {}
func (MemoryWarning) isAction()        {}
func (regionSettled) isAction()        {}
func (yearRangeSettled) isAction()     {}
func (loaded) isAction()               {}
func (loadingFailed) isAction()        {}
func (autoUnfold) isAction()           {}

// AppAction is emitted for the application around the map.
type AppAction interface {
	Name() string
}

type PreviewImage struct {
	Image models.Image `json:"image"`
}

type OpenImageList struct {
	Images []models.Image `json:"images"`
}

type PresentAlert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	// OpenSettings offers a link to the system settings.
	OpenSettings bool `json:"open_settings,omitempty"`
}

type SetMinimized struct {
	Minimized bool `json:"minimized"`
}

func (PreviewImage) Name() string  { return "previewImage" }
func (OpenImageList) Name() string { return "openImageList" }
func (PresentAlert) Name() string  { return "presentAlert" }
func (SetMinimized) Name() string  { return "setMinimized" }
