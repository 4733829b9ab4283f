package builder

import (
	"slices"

	"railgen/internal/domain"
)

// Track is the builder handle of a track section.
type Track struct {
	b      *Builder
	id     string
	length int64
	begin  *Endpoint
	end    *Endpoint
	geo    []domain.Point
	slopes []domain.Slope
	curves []domain.Curve
}

// ID returns the track section identifier.
func (t *Track) ID() string { return t.id }

// Length returns the track length.
func (t *Track) Length() int64 { return t.length }

// Begin returns the BEGIN endpoint.
func (t *Track) Begin() *Endpoint { return t.begin }

// End returns the END endpoint.
func (t *Track) End() *Endpoint { return t.end }

// SetGeometry records an explicit line geometry. No interpolation is performed.
func (t *Track) SetGeometry(points ...domain.Point) error {
	if err := t.b.mutable(); err != nil {
		return err
	}
	if err := domain.CheckPoints(domain.KindTrackSection, t.id, "geo.coordinates", points...); err != nil {
		return t.b.fail(err)
	}
	t.geo = slices.Clone(points)
	return nil
}

// AddSlope records a gradient over [begin, end].
func (t *Track) AddSlope(begin, end int64, gradient float64) error {
	if err := t.b.mutable(); err != nil {
		return err
	}
	if err := domain.CheckRange(domain.KindTrackSection, t.id, "slopes", begin, end, t.length); err != nil {
		return t.b.fail(err)
	}
	if err := domain.CheckFinite(domain.KindTrackSection, t.id, "slopes.gradient", gradient); err != nil {
		return t.b.fail(err)
	}
	t.slopes = append(t.slopes, domain.Slope{Begin: begin, End: end, Gradient: gradient})
	return nil
}

// AddCurve records a curve radius over [begin, end].
func (t *Track) AddCurve(begin, end int64, radius float64) error {
	if err := t.b.mutable(); err != nil {
		return err
	}
	if err := domain.CheckRange(domain.KindTrackSection, t.id, "curves", begin, end, t.length); err != nil {
		return t.b.fail(err)
	}
	if err := domain.CheckFinite(domain.KindTrackSection, t.id, "curves.radius", radius); err != nil {
		return t.b.fail(err)
	}
	t.curves = append(t.curves, domain.Curve{Begin: begin, End: end, Radius: radius})
	return nil
}

// AddDetector places a detector on the track.
func (t *Track) AddDetector(position int64, label string) (*Detector, error) {
	return t.b.AddDetector(t, position, label)
}

// AddSignal places a signal on the track.
func (t *Track) AddSignal(position int64, opts SignalOptions) (*Signal, error) {
	return t.b.AddSignal(t, position, opts)
}

// AddBufferStop places a buffer stop on the track.
func (t *Track) AddBufferStop(position int64, label string) (domain.BufferStop, error) {
	return t.b.AddBufferStop(t, position, label)
}

func (t *Track) section() domain.TrackSection {
	s := domain.TrackSection{
		ID:     t.id,
		Length: t.length,
		Slopes: slices.Clone(t.slopes),
		Curves: slices.Clone(t.curves),
	}
	if s.Slopes == nil {
		s.Slopes = []domain.Slope{}
	}
	if s.Curves == nil {
		s.Curves = []domain.Curve{}
	}
	switch {
	case len(t.geo) > 0:
		s.Geo = domain.MakeGeoLine(t.geo...)
	case t.begin.coords != nil && t.end.coords != nil:
		s.Geo = domain.MakeGeoLine(*t.begin.coords, *t.end.coords)
	}
	return s
}

// Endpoint is one extremity of a track, used to form links and switch ports.
type Endpoint struct {
	track    *Track
	ext      domain.Extremity
	coords   *domain.Point
	consumer string
}

// Track returns the owning track.
func (e *Endpoint) Track() *Track { return e.track }

// Extremity returns BEGIN or END.
func (e *Endpoint) Extremity() domain.Extremity { return e.ext }

// Ref returns the document reference of the endpoint.
func (e *Endpoint) Ref() domain.TrackEndpoint {
	return domain.TrackEndpoint{Track: e.track.id, Endpoint: e.ext}
}

func (e *Endpoint) String() string {
	return e.Ref().String()
}

// ConsumedBy returns the id of the link or switch bound to the endpoint, or "".
func (e *Endpoint) ConsumedBy() string { return e.consumer }

// SetCoords attaches a coordinate to the endpoint.
func (e *Endpoint) SetCoords(x, y float64) error {
	if err := e.track.b.mutable(); err != nil {
		return err
	}
	p := domain.Point{x, y}
	if err := domain.CheckPoints(domain.KindTrackSection, e.track.id, "geo."+string(e.ext), p); err != nil {
		return e.track.b.fail(err)
	}
	e.coords = &p
	return nil
}

// Coords returns the endpoint coordinate if one was set.
func (e *Endpoint) Coords() (domain.Point, bool) {
	if e.coords == nil {
		return domain.Point{}, false
	}
	return *e.coords, true
}
