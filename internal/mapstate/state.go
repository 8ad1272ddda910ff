// Package mapstate is the map state machine: a single goroutine owns the map
// state and reduces user, timer and load actions into loads, reconciled surface
// updates and preview cards.
package mapstate

import (
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/clustering"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/reconcile"
)

const (
	LocationZoom      = 17
	FirstLocationZoom = 15
	MaxPreviews       = 10
)

// Debounce ids.
const (
	regionChangedID  = "regionChanged"
	yearRangeID      = "yearRangeChanged"
	updatePreviewsID = "updatePreviews"
	autoUnfoldID     = "autoUnfold"
)

type Config struct {
	Viewport        geo.Size
	Years           models.YearRange
	Settings        Settings
	RegionDebounce  time.Duration
	YearDebounce    time.Duration
	PreviewDebounce time.Duration
	AutoUnfoldDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Viewport:        geo.Size{Width: 390, Height: 844},
		Years:           models.DefaultYearRange(),
		Settings:        Settings{PreviewSort: SortByDistance},
		RegionDebounce:  150 * time.Millisecond,
		YearDebounce:    150 * time.Millisecond,
		PreviewDebounce: 300 * time.Millisecond,
		AutoUnfoldDelay: 1500 * time.Millisecond,
	}
}

type SortOrder string

const (
	SortByDistance       SortOrder = "distance"
	SortByYearAscending  SortOrder = "yearAscending"
	SortByYearDescending SortOrder = "yearDescending"
)

func (o SortOrder) Valid() bool {
	switch o {
	case SortByDistance, SortByYearAscending, SortByYearDescending:
		return true
	}
	return false
}

// Settings are read on every action; the session never persists them.
type Settings struct {
	OpenClusterPreviews bool      `json:"open_cluster_previews"`
	ShowYearColor       bool      `json:"show_year_color"`
	PreviewSort         SortOrder `json:"preview_sort"`
}

type LocationStatus string

const (
	LocationUnknown    LocationStatus = "unknown"
	LocationDenied     LocationStatus = "denied"
	LocationAuthorized LocationStatus = "authorized"
)

type LocationState struct {
	Status     LocationStatus  `json:"status"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
}

type PreviewKind string

const (
	PreviewImageCard  PreviewKind = "image"
	PreviewViewAsList PreviewKind = "viewAsList"
	PreviewNoImages   PreviewKind = "noImages"
)

type Preview struct {
	Kind  PreviewKind   `json:"kind"`
	Image *models.Image `json:"image,omitempty"`
	Total int           `json:"total,omitempty"` // viewAsList: number of visible photos
}

// state is owned by the session loop.
type state struct {
	mapType        models.MapType
	region         geo.Region
	years          models.YearRange
	images         models.ImageSet
	serverClusters reconcile.ServerClusters
	table          clustering.Table
	lastLoaded     *loader.Params
	inFlight       *loader.Params
	loading        bool
	generation     uint64
	previews       []Preview
	settings       Settings
	location       LocationState
	locatedOnce    bool
	minimized      bool
	selected       string
}

func (s *state) resetAnnotations() {
	s.images = models.ImageSet{}
	s.serverClusters = reconcile.ServerClusters{}
	s.table = clustering.Table{}
	s.lastLoaded = nil
	s.inFlight = nil
}

// Snapshot is a read-only copy of the state, published after every batch of
// actions.
type Snapshot struct {
	MapType          models.MapType    `json:"map_type"`
	Region           geo.Region        `json:"region"`
	Zoom             int               `json:"zoom"`
	Years            models.YearRange  `json:"years"`
	Loading          bool              `json:"loading"`
	Generation       uint64            `json:"generation"`
	Images           int               `json:"images"`
	ServerClusters   int               `json:"server_clusters"`
	LocalClusters    int               `json:"local_clusters"`
	Previews         []Preview         `json:"previews"`
	Settings         Settings          `json:"settings"`
	Location         LocationState     `json:"location"`
	Minimized        bool              `json:"minimized"`
	Selected         string            `json:"selected,omitempty"`
	LastLoadedRegion *geo.Region       `json:"last_loaded_region,omitempty"`
	LastLoadedYears  *models.YearRange `json:"last_loaded_years,omitempty"`
}
