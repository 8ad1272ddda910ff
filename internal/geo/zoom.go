package geo

import "math"

const (
	MinZoom = 3
	MaxZoom = 19
)

// Size is a viewport size in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) shortSide() float64 {
	return math.Min(s.Width, s.Height)
}

type calibrationPoint struct {
	width      float64
	adjustment float64
}

// Small phones, large phones and tablets show similar tile detail at different
// effective zoom offsets.
var calibration = []calibrationPoint{
	{width: 320, adjustment: 0.65},
	{width: 430, adjustment: 0.8},
	{width: 1024, adjustment: 1.5},
}

// DeviceAdjustment interpolates the zoom offset for a viewport by its shorter side.
func DeviceAdjustment(viewport Size) float64 {
	w := viewport.shortSide()
	first, last := calibration[0], calibration[len(calibration)-1]
	if w <= first.width {
		return first.adjustment
	}
	if w >= last.width {
		return last.adjustment
	}

	for i := 1; i < len(calibration); i++ {
		lo, hi := calibration[i-1], calibration[i]
		if w <= hi.width {
			t := (w - lo.width) / (hi.width - lo.width)
			return lo.adjustment + t*(hi.adjustment-lo.adjustment)
		}
	}
	return last.adjustment
}

func ClampZoom(zoom int) int {
	return max(MinZoom, min(MaxZoom, zoom))
}

// Zoom returns the integer zoom level that shows region on a viewport of the given size.
func Zoom(region Region, viewport Size) int {
	d := region.minDelta()
	if d <= 0 {
		return MaxZoom
	}
	z := math.Round(math.Log2(360/d) + DeviceAdjustment(viewport))
	if math.IsInf(z, 0) || math.IsNaN(z) {
		return MaxZoom
	}
	return ClampZoom(int(z))
}

// Delta is the inverse of Zoom: the angular span shown at zoom on viewport.
func Delta(zoom int, viewport Size) float64 {
	return 360 / math.Pow(2, float64(zoom)-DeviceAdjustment(viewport))
}

func RegionFor(center Coordinate, zoom int, viewport Size) Region {
	d := Delta(ClampZoom(zoom), viewport)
	return Region{
		Center: center,
		Span:   Span{LatitudeDelta: d, LongitudeDelta: d},
	}
}
