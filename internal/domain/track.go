package domain

import (
	"fmt"
	"math"
)

// TrackSection is a linear piece of track. Lengths and offsets are integer millimetres.
type TrackSection struct {
	ID     string      `json:"id"`
	Length int64       `json:"length"`
	Geo    *LineString `json:"geo,omitempty"`
	Slopes []Slope     `json:"slopes"`
	Curves []Curve     `json:"curves"`
}

// Slope is a gradient (in ‰) applying to [Begin, End] of a track.
type Slope struct {
	Begin    int64   `json:"begin"`
	End      int64   `json:"end"`
	Gradient float64 `json:"gradient"`
}

// Curve is a radius (in metres, signed by side) applying to [Begin, End] of a track.
type Curve struct {
	Begin  int64   `json:"begin"`
	End    int64   `json:"end"`
	Radius float64 `json:"radius"`
}

// TrackEndpoint references one extremity of a track section.
type TrackEndpoint struct {
	Track    string    `json:"track"`
	Endpoint Extremity `json:"endpoint"`
}

func (e TrackEndpoint) String() string {
	return fmt.Sprintf("%s.%s", e.Track, e.Endpoint)
}

// ApplicableDirectionsTrackRange is a directional range [Begin, End] on a track.
type ApplicableDirectionsTrackRange struct {
	Track                string              `json:"track"`
	Begin                int64               `json:"begin"`
	End                  int64               `json:"end"`
	ApplicableDirections ApplicableDirection `json:"applicable_directions"`
}

// CheckOffset verifies that 0 <= offset <= length.
func CheckOffset(entity EntityKind, id, field string, offset, length int64) error {
	if offset < 0 || offset > length {
		return Invalid(entity, id, field, ErrOutOfBounds, "%d not in [0, %d]", offset, length)
	}
	return nil
}

// CheckFinite rejects NaN and infinite values, which have no JSON encoding.
func CheckFinite(entity EntityKind, id, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(entity, id, field, ErrOutOfBounds, "non-finite value %g", v)
	}
	return nil
}

// CheckSpeed verifies that a speed is finite and not negative.
func CheckSpeed(entity EntityKind, id, field string, v float64) error {
	if err := CheckFinite(entity, id, field, v); err != nil {
		return err
	}
	if v < 0 {
		return Invalid(entity, id, field, ErrOutOfBounds, "negative speed %g", v)
	}
	return nil
}

// CheckPoints verifies that every coordinate is finite.
func CheckPoints(entity EntityKind, id, field string, points ...Point) error {
	for i, p := range points {
		for _, c := range p {
			if err := CheckFinite(entity, id, fmt.Sprintf("%s[%d]", field, i), c); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckRange verifies that 0 <= begin <= end <= length.
func CheckRange(entity EntityKind, id, field string, begin, end, length int64) error {
	if begin > end {
		return Invalid(entity, id, field, ErrOutOfBounds, "end %d precedes begin %d", end, begin)
	}
	if err := CheckOffset(entity, id, field+".begin", begin, length); err != nil {
		return err
	}
	return CheckOffset(entity, id, field+".end", end, length)
}
