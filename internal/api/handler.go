package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-pastvu-map/internal/annotation"
	"github.com/mr1hm/go-pastvu-map/internal/geo"
	"github.com/mr1hm/go-pastvu-map/internal/imagecache"
	"github.com/mr1hm/go-pastvu-map/internal/mapstate"
	"github.com/mr1hm/go-pastvu-map/internal/models"
	"github.com/mr1hm/go-pastvu-map/internal/stream"
	"github.com/mr1hm/go-pastvu-map/internal/surface"
)

type Session interface {
	Send(a mapstate.Action)
	Snapshot() mapstate.Snapshot
}

type ImageSource interface {
	Get(ctx context.Context, path string) (imagecache.Entry, error)
}

type Handler struct {
	session     Session
	surface     surface.Surface
	images      ImageSource
	broadcaster *stream.Broadcaster
}

func NewHandler(session Session, surf surface.Surface, images ImageSource, broadcaster *stream.Broadcaster) *Handler {
	return &Handler{
		session:     session,
		surface:     surf,
		images:      images,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/state", h.getState)
	api.GET("/annotations", h.getAnnotations)
	api.GET("/previews", h.getPreviews)
	api.POST("/region", h.postRegion)
	api.POST("/focus", h.postFocus)
	api.POST("/year-range", h.postYearRange)
	api.POST("/map-type", h.postMapType)
	api.POST("/select", h.postSelect)
	api.POST("/deselect", h.accept(mapstate.AnnotationDeselected{}))
	api.POST("/preview/close", h.accept(mapstate.PreviewClosed{}))
	api.POST("/location", h.postLocation)
	api.POST("/location/tap", h.accept(mapstate.LocationButtonTapped{}))
	api.POST("/settings", h.postSettings)
	api.POST("/sheet", h.postSheet)
	api.POST("/memory-warning", h.accept(mapstate.MemoryWarning{}))
	api.GET("/images/*path", h.getImage)
	if h.broadcaster != nil {
		api.GET("/stream", h.stream)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *Handler) getPreviews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"previews": h.session.Snapshot().Previews})
}

func (h *Handler) getAnnotations(c *gin.Context) {
	list := h.surface.VisibleAnnotations()
	if c.Query("all") == "true" {
		list = h.surface.Annotations()
	}

	data, err := toGeoJSON(list, h.session.Snapshot().Settings.ShowYearColor)
	if err != nil {
		slog.Error("failed to encode annotations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode annotations"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// accept returns a handler that forwards a fixed action.
func (h *Handler) accept(a mapstate.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.send(c, a)
	}
}

func (h *Handler) send(c *gin.Context, a mapstate.Action) {
	h.session.Send(a)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

type regionRequest struct {
	Center geo.Coordinate `json:"center"`
	Span   geo.Span       `json:"span"`
	ByUser bool           `json:"by_user"`
}

func validCoordinate(c geo.Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (h *Handler) postRegion(c *gin.Context) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid region: "+err.Error())
		return
	}
	if !validCoordinate(req.Center) || req.Span.LatitudeDelta <= 0 || req.Span.LongitudeDelta <= 0 {
		badRequest(c, "region needs a valid center and a positive span")
		return
	}

	region := geo.Region{Center: req.Center, Span: req.Span}
	// A headless surface learns its region from the client.
	h.surface.SetRegion(region, false)
	h.send(c, mapstate.RegionChanged{Region: region, ByUser: req.ByUser})
}

type focusRequest struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Zoom       int            `json:"zoom"`
}

func (h *Handler) postFocus(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid focus: "+err.Error())
		return
	}
	if !validCoordinate(req.Coordinate) {
		badRequest(c, "invalid coordinate")
		return
	}
	if req.Zoom < geo.MinZoom || req.Zoom > geo.MaxZoom {
		badRequest(c, "zoom out of range")
		return
	}
	h.send(c, mapstate.FocusOn{Coordinate: req.Coordinate, Zoom: req.Zoom})
}

func (h *Handler) postYearRange(c *gin.Context) {
	var years models.YearRange
	if err := c.ShouldBindJSON(&years); err != nil {
		badRequest(c, "invalid year range: "+err.Error())
		return
	}
	if err := years.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.send(c, mapstate.YearRangeChanged{Years: years})
}

func (h *Handler) postMapType(c *gin.Context) {
	var req struct {
		MapType string `json:"map_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid map type: "+err.Error())
		return
	}
	t, err := models.ParseMapType(strings.ToLower(req.MapType))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.send(c, mapstate.MapTypeChanged{MapType: t})
}

func (h *Handler) postSelect(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		badRequest(c, "annotation id required")
		return
	}

	a := findByID(h.surface.VisibleAnnotations(), req.ID)
	if a == nil {
		a = findByID(h.surface.Annotations(), req.ID)
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "annotation not on the map"})
		return
	}
	h.send(c, mapstate.AnnotationSelected{Annotation: a})
}

// findByID matches top-level annotations first, then members of surface groups.
func findByID(list []*annotation.Annotation, id string) *annotation.Annotation {
	for _, a := range list {
		if a.ID() == id {
			return a
		}
	}
	for _, a := range annotation.Flatten(list) {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

func (h *Handler) postLocation(c *gin.Context) {
	var loc mapstate.LocationState
	if err := c.ShouldBindJSON(&loc); err != nil {
		badRequest(c, "invalid location: "+err.Error())
		return
	}
	switch loc.Status {
	case mapstate.LocationUnknown, mapstate.LocationDenied, mapstate.LocationAuthorized:
	default:
		badRequest(c, "unknown location status")
		return
	}
	if loc.Coordinate != nil && !validCoordinate(*loc.Coordinate) {
		badRequest(c, "invalid coordinate")
		return
	}
	h.send(c, mapstate.NewLocationState{Location: loc})
}

func (h *Handler) postSettings(c *gin.Context) {
	settings := h.session.Snapshot().Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "invalid settings: "+err.Error())
		return
	}
	if !settings.PreviewSort.Valid() {
		badRequest(c, "unknown preview sort")
		return
	}
	h.send(c, mapstate.SettingsChanged{Settings: settings})
}

func (h *Handler) postSheet(c *gin.Context) {
	var req struct {
		Minimized bool `json:"minimized"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid sheet state: "+err.Error())
		return
	}
	h.send(c, mapstate.SheetInteracted{Minimized: req.Minimized})
}

func (h *Handler) getImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image proxy disabled"})
		return
	}
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		badRequest(c, "invalid image path")
		return
	}

	e, err := h.images.Get(c.Request.Context(), path)
	if err != nil {
		slog.Warn("image fetch failed", "path", path, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, imagecache.ErrUnexpectedStatus) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "image unavailable"})
		return
	}

	contentType := e.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, e.Data)
}
