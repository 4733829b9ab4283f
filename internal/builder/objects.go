package builder

import (
	"maps"
	"slices"

	"railgen/internal/domain"
)

// Detector is the builder handle of a detector.
type Detector struct {
	track *Track
	det   domain.Detector
}

// ID returns the detector identifier.
func (d *Detector) ID() string { return d.det.ID }

// Track returns the track carrying the detector.
func (d *Detector) Track() *Track { return d.track }

// Position returns the detector offset.
func (d *Detector) Position() int64 { return d.det.Position }

// Signal is the builder handle of a signal.
type Signal struct {
	b   *Builder
	sig domain.Signal
}

// ID returns the signal identifier.
func (s *Signal) ID() string { return s.sig.ID }

// Position returns the signal offset.
func (s *Signal) Position() int64 { return s.sig.Position }

// AddLogicalSignal appends a logical signal of the given system. Unknown systems
// and settings that do not match the system schema are rejected here.
func (s *Signal) AddLogicalSignal(system domain.SignalingSystem, settings map[string]string, next ...domain.SignalingSystem) (*LogicalSignal, error) {
	if err := s.b.mutable(); err != nil {
		return nil, err
	}
	field := "logical_signals"
	ls, err := domain.NewLogicalSignal(system, settings)
	if err != nil {
		return nil, s.b.fail(domain.Invalid(domain.KindSignal, s.sig.ID, field, err, ""))
	}
	ls.NextSignalingSystems = append(ls.NextSignalingSystems, next...)
	if err := ls.Validate(); err != nil {
		return nil, s.b.fail(domain.Invalid(domain.KindSignal, s.sig.ID, field, err, ""))
	}
	s.sig.LogicalSignals = append(s.sig.LogicalSignals, ls)
	return &LogicalSignal{s: s, index: len(s.sig.LogicalSignals) - 1}, nil
}

func (s *Signal) snapshot() domain.Signal {
	sig := s.sig
	sig.LogicalSignals = make([]domain.LogicalSignal, len(s.sig.LogicalSignals))
	for i, ls := range s.sig.LogicalSignals {
		sig.LogicalSignals[i] = cloneLogicalSignal(ls)
	}
	return sig
}

func cloneLogicalSignal(ls domain.LogicalSignal) domain.LogicalSignal {
	c := ls
	c.NextSignalingSystems = slices.Clone(ls.NextSignalingSystems)
	c.Settings = maps.Clone(ls.Settings)
	c.DefaultParameters = maps.Clone(ls.DefaultParameters)
	c.ConditionalParameters = make([]domain.ConditionalParameters, len(ls.ConditionalParameters))
	for i, cp := range ls.ConditionalParameters {
		c.ConditionalParameters[i] = domain.ConditionalParameters{OnRoute: cp.OnRoute, Parameters: maps.Clone(cp.Parameters)}
	}
	return c
}

// LogicalSignal is the builder handle of one logical signal of a Signal.
type LogicalSignal struct {
	s     *Signal
	index int
}

// System returns the signaling system of the logical signal.
func (l *LogicalSignal) System() domain.SignalingSystem {
	return l.s.sig.LogicalSignals[l.index].SignalingSystem
}

// SetDefaultParameter overrides one default parameter.
func (l *LogicalSignal) SetDefaultParameter(name, value string) error {
	return l.update(func(ls *domain.LogicalSignal) {
		ls.DefaultParameters[name] = value
	})
}

// AddConditionalParameters appends a per-route parameter override. Overrides are
// kept in order and never deduplicated; the route id is not resolved.
func (l *LogicalSignal) AddConditionalParameters(onRoute string, params map[string]string) error {
	return l.update(func(ls *domain.LogicalSignal) {
		ls.ConditionalParameters = append(ls.ConditionalParameters, domain.ConditionalParameters{
			OnRoute:    onRoute,
			Parameters: maps.Clone(params),
		})
	})
}

// update applies fn to a copy and commits it only if the result still validates.
func (l *LogicalSignal) update(fn func(ls *domain.LogicalSignal)) error {
	b := l.s.b
	if err := b.mutable(); err != nil {
		return err
	}
	next := cloneLogicalSignal(l.s.sig.LogicalSignals[l.index])
	fn(&next)
	if err := next.Validate(); err != nil {
		return b.fail(domain.Invalid(domain.KindSignal, l.s.sig.ID, "logical_signals", err, ""))
	}
	l.s.sig.LogicalSignals[l.index] = next
	return nil
}

// SpeedSection is the builder handle of a speed section.
type SpeedSection struct {
	b   *Builder
	sec domain.SpeedSection
}

// ID returns the speed section identifier.
func (s *SpeedSection) ID() string { return s.sec.ID }

// AddTrackRange restricts speed on [begin, end] of t in the given directions.
func (s *SpeedSection) AddTrackRange(t *Track, begin, end int64, directions domain.ApplicableDirection) error {
	if err := s.b.mutable(); err != nil {
		return err
	}
	field := "track_ranges"
	if err := s.b.owns(domain.KindSpeedSection, s.sec.ID, t); err != nil {
		return s.b.fail(err)
	}
	if !directions.Valid() {
		return s.b.fail(domain.Invalid(domain.KindSpeedSection, s.sec.ID, field+".applicable_directions", domain.ErrUnknownVariant, "%q", directions))
	}
	if err := domain.CheckRange(domain.KindSpeedSection, s.sec.ID, field, begin, end, t.length); err != nil {
		return s.b.fail(err)
	}
	s.sec.TrackRanges = append(s.sec.TrackRanges, domain.ApplicableDirectionsTrackRange{
		Track:                t.id,
		Begin:                begin,
		End:                  end,
		ApplicableDirections: directions,
	})
	return nil
}

// SetSpeedLimitByTag overrides the limit for a rolling stock tag.
func (s *SpeedSection) SetSpeedLimitByTag(tag string, limit float64) error {
	if err := s.b.mutable(); err != nil {
		return err
	}
	if err := domain.CheckSpeed(domain.KindSpeedSection, s.sec.ID, "speed_limit_by_tag."+tag, limit); err != nil {
		return s.b.fail(err)
	}
	s.sec.SpeedLimitByTag[tag] = limit
	return nil
}

// RestrictToRoutes limits the section to the given routes. Route ids are not resolved.
func (s *SpeedSection) RestrictToRoutes(routes ...string) error {
	if err := s.b.mutable(); err != nil {
		return err
	}
	if s.sec.OnRoutes == nil {
		s.sec.OnRoutes = []string{}
	}
	s.sec.OnRoutes = append(s.sec.OnRoutes, routes...)
	return nil
}

func (s *SpeedSection) snapshot() domain.SpeedSection {
	sec := s.sec
	sec.SpeedLimitByTag = maps.Clone(s.sec.SpeedLimitByTag)
	sec.TrackRanges = slices.Clone(s.sec.TrackRanges)
	sec.OnRoutes = slices.Clone(s.sec.OnRoutes)
	return sec
}

// OperationalPoint is the builder handle of an operational point.
type OperationalPoint struct {
	b  *Builder
	op domain.OperationalPoint
}

// ID returns the operational point identifier.
func (o *OperationalPoint) ID() string { return o.op.ID }

// AddPart anchors the operational point at position on t.
func (o *OperationalPoint) AddPart(t *Track, position int64) error {
	if err := o.b.mutable(); err != nil {
		return err
	}
	if err := o.b.owns(domain.KindOperationalPoint, o.op.ID, t); err != nil {
		return o.b.fail(err)
	}
	field := "parts.position"
	if err := domain.CheckOffset(domain.KindOperationalPoint, o.op.ID, field, position, t.length); err != nil {
		return o.b.fail(err)
	}
	o.op.Parts = append(o.op.Parts, domain.OperationalPointPart{Track: t.id, Position: position})
	return nil
}
