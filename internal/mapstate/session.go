package mapstate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/loader"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/surface"
	"github.com/mr1hm/go-pastvu-map/internal/throttle"
)

const actionBuffer = 64

// Prefetcher warms the image cache for a thumbnail path without blocking.
type Prefetcher interface {
	TrySubmit(path string) bool
}

// Session owns one map's state. Every mutation happens on the goroutine running
// Run; other goroutines talk to it through Send.
type Session struct {
	// OnAppAction receives actions for the surrounding app. It runs on the
	// session goroutine and must not call Send.
	OnAppAction func(AppAction)
	Prefetcher  Prefetcher

	cfg       Config
	loader    loader.Loader
	surface   surface.Surface
	store     *annotation.Store
	scheduler *throttle.Scheduler

	actions  chan Action
	queue    []Action
	st       state
	snapshot atomic.Pointer[Snapshot]

	loads   sync.WaitGroup
	loadCtx context.Context
	done    chan struct{}
}

func New(cfg Config, ld loader.Loader, surf surface.Surface) *Session {
	if !cfg.Settings.PreviewSort.Valid() {
		cfg.Settings.PreviewSort = SortByDistance
	}
	s := &Session{
		cfg:       cfg,
		loader:    ld,
		surface:   surf,
		store:     annotation.NewStore(),
		scheduler: throttle.NewScheduler(),
		actions:   make(chan Action, actionBuffer),
		done:      make(chan struct{}),
		st: state{
			mapType:  models.MapTypeStandard,
			years:    cfg.Years,
			settings: cfg.Settings,
			location: LocationState{Status: LocationUnknown},
		},
	}
	s.st.resetAnnotations()
	s.publish()
	return s
}

// Send hands an action to the session loop. It returns once the action is
// queued, or immediately after the session stopped.
func (s *Session) Send(a Action) {
	select {
	case <-s.done:
	case s.actions <- a:
	}
}

func (s *Session) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

func (s *Session) Settings() Settings {
	return s.Snapshot().Settings
}

// Run processes actions until ctx is canceled, then waits for in-flight loads.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.loadCtx = ctx

	slog.Info("map session started", "viewport_width", s.cfg.Viewport.Width, "viewport_height", s.cfg.Viewport.Height)
	defer func() {
		s.scheduler.Stop()
		close(s.done)
		cancel()
		s.loads.Wait()
		slog.Info("map session stopped")
	}()

	for {
		for len(s.queue) > 0 {
			next := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.reduce(next)
		}
		s.publish()

		select {
		case <-ctx.Done():
			return nil
		case a := <-s.actions:
			s.reduce(a)
		}
	}
}

// enqueue schedules a follow-up action ahead of anything still in the channel.
func (s *Session) enqueue(a Action) {
	s.queue = append(s.queue, a)
}

// debounce sends a to the loop after delay unless rescheduled under id first.
func (s *Session) debounce(id string, delay time.Duration, a Action) {
	s.scheduler.Debounce(id, delay, func() { s.Send(a) })
}

func (s *Session) emit(a AppAction) {
	slog.Debug("app action", "action", a.Name())
	if s.OnAppAction != nil {
		s.OnAppAction(a)
	}
}

func (s *Session) publish() {
	st := &s.st
	snap := &Snapshot{
		MapType:        st.mapType,
		Region:         st.region,
		Years:          st.years,
		Loading:        st.loading,
		Generation:     st.generation,
		Images:         len(st.images),
		ServerClusters: len(st.serverClusters),
		LocalClusters:  len(st.table.Clusters()),
		Previews:       append([]Preview(nil), st.previews...),
		Settings:       st.settings,
		Location:       st.location,
		Minimized:      st.minimized,
		Selected:       st.selected,
	}
	if !st.region.IsZero() {
		snap.Zoom = s.zoom()
	}
	if st.lastLoaded != nil {
		region, years := st.lastLoaded.Region, st.lastLoaded.Years
		snap.LastLoadedRegion = &region
		snap.LastLoadedYears = &years
	}
	s.snapshot.Store(snap)
}
