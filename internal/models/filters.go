package models

import "fmt"

// PastVu catalogues photos taken between these years.
const (
	MinYear = 1826
	MaxYear = 2000
)

// YearRange is an inclusive [Lower, Upper] filter.
type YearRange struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

func DefaultYearRange() YearRange {
	return YearRange{Lower: MinYear, Upper: MaxYear}
}

func (r YearRange) Validate() error {
	if r.Lower > r.Upper {
		return fmt.Errorf("lower year %d is after upper year %d", r.Lower, r.Upper)
	}
	if r.Lower < MinYear || r.Upper > MaxYear {
		return fmt.Errorf("year range %d-%d outside %d-%d", r.Lower, r.Upper, MinYear, MaxYear)
	}
	return nil
}

// Overlaps reports whether an image dated year..year2 falls in the filter.
func (r YearRange) Overlaps(year, year2 int) bool {
	return year <= r.Upper && year2 >= r.Lower
}

type MapType string

const (
	MapTypeStandard  MapType = "standard"
	MapTypeSatellite MapType = "satellite"
	MapTypeHybrid    MapType = "hybrid"
)

func ParseMapType(s string) (MapType, error) {
	switch t := MapType(s); t {
	case MapTypeStandard, MapTypeSatellite, MapTypeHybrid:
		return t, nil
	default:
		return "", fmt.Errorf("unknown map type %q", s)
	}
}

// YearColor returns the marker color for a photo year, oldest photos blue through
// newest red, in steps of roughly a decade.
func YearColor(year int) string {
	palette := []string{
		"#211f80", "#3a2f9a", "#4b3fb5", "#0050c0", "#0072d4", "#0097b5",
		"#00a48b", "#23a85c", "#78b530", "#b5b517", "#e0a800", "#ef8200",
		"#f25700", "#e62d00", "#cc0000", "#a80012", "#8c0024", "#6e0034",
	}
	if year <= MinYear {
		return palette[0]
	}
	if year >= MaxYear {
		return palette[len(palette)-1]
	}
	idx := (year - MinYear) * len(palette) / (MaxYear - MinYear + 1)
	return palette[idx]
}
