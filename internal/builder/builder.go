// Package builder assembles railway infrastructures.
//
// A Builder is a single-use, single-threaded construction context. Callers add
// track sections, connect their endpoints with links and switches, attach
// objects and finally call Build, which validates the whole graph and returns
// an immutable *domain.Infra. Every construction call fails fast; the first
// failure is also remembered and makes Build fail, so an ignored error can
// never leak a partial document.
package builder

import (
	"fmt"
	"maps"
	"slices"

	"railgen/internal/domain"
)

// Builder is the mutable construction context of one infrastructure.
// It is not safe for concurrent use.
type Builder struct {
	alloc *Allocator
	built bool
	err   error
	ids   map[domain.EntityKind]map[string]struct{}

	tracks            []*Track
	links             []domain.Link
	switches          []domain.Switch
	detectors         []*Detector
	signals           []*Signal
	speedSections     []*SpeedSection
	electrifications  []domain.Electrification
	operationalPoints []*OperationalPoint
	bufferStops       []domain.BufferStop
}

// New creates an empty builder with its own allocator.
func New() *Builder {
	return &Builder{
		alloc: NewAllocator(),
		ids:   make(map[domain.EntityKind]map[string]struct{}),
	}
}

// Allocator exposes the builder's label allocator.
func (b *Builder) Allocator() *Allocator {
	return b.alloc
}

// Err returns the first construction error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Built reports whether Build has been called.
func (b *Builder) Built() bool {
	return b.built
}

// Tracks returns the track handles in creation order.
func (b *Builder) Tracks() []*Track {
	return slices.Clone(b.tracks)
}

func (b *Builder) mutable() error {
	if b.built {
		return domain.ErrBuilt
	}
	return nil
}

// fail records err as the builder's first error and returns it.
func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return err
}

// claim resolves label (allocating one when empty), runs check with the
// resulting id and registers it. The allocator only advances on success.
func (b *Builder) claim(kind domain.EntityKind, label string, check func(id string) error) (string, error) {
	if err := b.mutable(); err != nil {
		return "", err
	}
	id := label
	if id == "" {
		id = b.alloc.Peek(kind)
	}
	set, ok := b.ids[kind]
	if !ok {
		set = make(map[string]struct{})
		b.ids[kind] = set
	}
	if _, taken := set[id]; taken {
		if label == "" {
			// skip the colliding label so later calls can succeed
			b.alloc.Next(kind)
		}
		return "", b.fail(domain.Invalid(kind, id, "id", domain.ErrDuplicateIdentifier, ""))
	}
	if check != nil {
		if err := check(id); err != nil {
			return "", b.fail(err)
		}
	}
	if label == "" {
		b.alloc.Next(kind)
	}
	set[id] = struct{}{}
	return id, nil
}

// owns verifies that t was created by this builder.
func (b *Builder) owns(kind domain.EntityKind, id string, t *Track) error {
	if t == nil || t.b != b {
		return domain.Invalid(kind, id, "track", domain.ErrUnknownTrack, "track does not belong to this builder")
	}
	return nil
}

// AddTrackSection creates a track section. An empty label is allocated.
func (b *Builder) AddTrackSection(length int64, label string) (*Track, error) {
	id, err := b.claim(domain.KindTrackSection, label, func(id string) error {
		if length < 0 {
			return domain.Invalid(domain.KindTrackSection, id, "length", domain.ErrOutOfBounds, "negative length %d", length)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t := &Track{b: b, id: id, length: length}
	t.begin = &Endpoint{track: t, ext: domain.Begin}
	t.end = &Endpoint{track: t, ext: domain.End}
	b.tracks = append(b.tracks, t)
	return t, nil
}

// AddLink joins two endpoints of distinct track sections.
func (b *Builder) AddLink(src, dst *Endpoint, label string) (domain.Link, error) {
	id, err := b.claim(domain.KindLink, label, func(id string) error {
		for _, ep := range []*Endpoint{src, dst} {
			if ep == nil {
				return domain.Invalid(domain.KindLink, id, "endpoint", domain.ErrUnknownTrack, "nil endpoint")
			}
			if err := b.owns(domain.KindLink, id, ep.track); err != nil {
				return err
			}
			if ep.consumer != "" {
				return domain.Invalid(domain.KindLink, id, "endpoint", domain.ErrEndpointConsumed, "%s already bound to %s", ep, ep.consumer)
			}
		}
		if src.track == dst.track {
			return domain.Invalid(domain.KindLink, id, "dst", domain.ErrSelfLink, "%s", src.track.id)
		}
		return nil
	})
	if err != nil {
		return domain.Link{}, err
	}
	src.consumer, dst.consumer = id, id
	link := domain.Link{ID: id, Src: src.Ref(), Dst: dst.Ref()}
	b.links = append(b.links, link)
	return link, nil
}

// AddPointSwitch creates a point switch joining base to the left (B1) and right (B2) branches.
func (b *Builder) AddPointSwitch(base, left, right *Endpoint, label string) (domain.Switch, error) {
	return b.AddSwitch(domain.PointSwitch, label, map[string]*Endpoint{
		"A":  base,
		"B1": left,
		"B2": right,
	})
}

// AddSwitch creates a switch of any supported type. ports must name exactly the ports of the type.
func (b *Builder) AddSwitch(switchType domain.SwitchType, label string, ports map[string]*Endpoint) (domain.Switch, error) {
	id, err := b.claim(domain.KindSwitch, label, func(id string) error {
		want := switchType.Ports()
		if want == nil {
			return domain.Invalid(domain.KindSwitch, id, "switch_type", domain.ErrUnknownVariant, "%q", switchType)
		}
		if len(ports) != len(want) {
			return domain.Invalid(domain.KindSwitch, id, "ports", domain.ErrArityMismatch,
				"%s needs %d ports, got %d", switchType, len(want), len(ports))
		}
		seen := make(map[*Endpoint]string, len(ports))
		for _, port := range want {
			ep, ok := ports[port]
			if !ok {
				return domain.Invalid(domain.KindSwitch, id, "ports", domain.ErrArityMismatch, "missing port %s", port)
			}
			if ep == nil {
				return domain.Invalid(domain.KindSwitch, id, "ports."+port, domain.ErrUnknownTrack, "nil endpoint")
			}
			if err := b.owns(domain.KindSwitch, id, ep.track); err != nil {
				return err
			}
			if ep.consumer != "" {
				return domain.Invalid(domain.KindSwitch, id, "ports."+port, domain.ErrEndpointConsumed, "%s already bound to %s", ep, ep.consumer)
			}
			if other, dup := seen[ep]; dup {
				return domain.Invalid(domain.KindSwitch, id, "ports."+port, domain.ErrEndpointConsumed, "%s already bound to port %s", ep, other)
			}
			seen[ep] = port
		}
		return nil
	})
	if err != nil {
		return domain.Switch{}, err
	}
	sw := domain.Switch{ID: id, SwitchType: switchType, Ports: make(map[string]domain.TrackEndpoint, len(ports))}
	for port, ep := range ports {
		ep.consumer = id
		sw.Ports[port] = ep.Ref()
	}
	b.switches = append(b.switches, sw)
	return sw, nil
}

// AddDetector places a detector on t.
func (b *Builder) AddDetector(t *Track, position int64, label string) (*Detector, error) {
	id, err := b.claim(domain.KindDetector, label, func(id string) error {
		if err := b.owns(domain.KindDetector, id, t); err != nil {
			return err
		}
		return domain.CheckOffset(domain.KindDetector, id, "position", position, t.length)
	})
	if err != nil {
		return nil, err
	}
	d := &Detector{track: t, det: domain.Detector{ID: id, Track: t.id, Position: position}}
	b.detectors = append(b.detectors, d)
	return d, nil
}

// SignalOptions configures a new signal. A nil SightDistance means domain.DefaultSightDistance;
// an empty Direction means START_TO_STOP.
type SignalOptions struct {
	Label            string
	Direction        domain.ApplicableDirection
	IsRouteDelimiter bool
	SightDistance    *int64
}

// Distance is a helper for SignalOptions.SightDistance.
func Distance(d int64) *int64 {
	return &d
}

// AddSignal places a signal on t.
func (b *Builder) AddSignal(t *Track, position int64, opts SignalOptions) (*Signal, error) {
	direction := opts.Direction
	if direction == "" {
		direction = domain.StartToStop
	}
	sight := domain.DefaultSightDistance
	if opts.SightDistance != nil {
		sight = *opts.SightDistance
	}
	id, err := b.claim(domain.KindSignal, opts.Label, func(id string) error {
		if err := b.owns(domain.KindSignal, id, t); err != nil {
			return err
		}
		if !direction.Valid() {
			return domain.Invalid(domain.KindSignal, id, "direction", domain.ErrUnknownVariant, "%q", direction)
		}
		if sight < 0 {
			return domain.Invalid(domain.KindSignal, id, "sight_distance", domain.ErrOutOfBounds, "negative sight distance %d", sight)
		}
		return domain.CheckOffset(domain.KindSignal, id, "position", position, t.length)
	})
	if err != nil {
		return nil, err
	}
	s := &Signal{b: b, sig: domain.Signal{
		ID:               id,
		Track:            t.id,
		Position:         position,
		Direction:        direction,
		IsRouteDelimiter: opts.IsRouteDelimiter,
		SightDistance:    sight,
		LogicalSignals:   []domain.LogicalSignal{},
	}}
	b.signals = append(b.signals, s)
	return s, nil
}

// AddSignalAtDetector places a signal at the position of d.
func (b *Builder) AddSignalAtDetector(d *Detector, opts SignalOptions) (*Signal, error) {
	if d == nil {
		if err := b.mutable(); err != nil {
			return nil, err
		}
		return nil, b.fail(domain.Invalid(domain.KindSignal, opts.Label, "detector", domain.ErrUnknownTrack, "nil detector"))
	}
	return b.AddSignal(d.track, d.det.Position, opts)
}

// AddSpeedSection creates a speed section (limit in m/s). Track ranges are added on the result.
func (b *Builder) AddSpeedSection(speedLimit float64, label string) (*SpeedSection, error) {
	id, err := b.claim(domain.KindSpeedSection, label, func(id string) error {
		return domain.CheckSpeed(domain.KindSpeedSection, id, "speed_limit", speedLimit)
	})
	if err != nil {
		return nil, err
	}
	s := &SpeedSection{b: b, sec: domain.SpeedSection{
		ID:              id,
		SpeedLimit:      speedLimit,
		SpeedLimitByTag: map[string]float64{},
		TrackRanges:     []domain.ApplicableDirectionsTrackRange{},
	}}
	b.speedSections = append(b.speedSections, s)
	return s, nil
}

// AddElectrification covers tracks with a voltage profile.
func (b *Builder) AddElectrification(label, voltage string, tracks ...*Track) (domain.Electrification, error) {
	id, err := b.claim(domain.KindElectrification, label, func(id string) error {
		for _, t := range tracks {
			if err := b.owns(domain.KindElectrification, id, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Electrification{}, err
	}
	e := domain.Electrification{ID: id, Voltage: voltage, Tracks: make([]string, 0, len(tracks))}
	for _, t := range tracks {
		e.Tracks = append(e.Tracks, t.id)
	}
	b.electrifications = append(b.electrifications, e)
	return e, nil
}

// AddOperationalPoint creates an operational point. Parts are added on the result.
func (b *Builder) AddOperationalPoint(label, trigram string, uic int64, weight float64) (*OperationalPoint, error) {
	id, err := b.claim(domain.KindOperationalPoint, label, func(id string) error {
		return domain.CheckFinite(domain.KindOperationalPoint, id, "weight", weight)
	})
	if err != nil {
		return nil, err
	}
	op := &OperationalPoint{b: b, op: domain.OperationalPoint{
		ID:      id,
		Trigram: trigram,
		UIC:     uic,
		Weight:  weight,
		Parts:   []domain.OperationalPointPart{},
	}}
	b.operationalPoints = append(b.operationalPoints, op)
	return op, nil
}

// AddBufferStop places a buffer stop on t.
func (b *Builder) AddBufferStop(t *Track, position int64, label string) (domain.BufferStop, error) {
	id, err := b.claim(domain.KindBufferStop, label, func(id string) error {
		if err := b.owns(domain.KindBufferStop, id, t); err != nil {
			return err
		}
		return domain.CheckOffset(domain.KindBufferStop, id, "position", position, t.length)
	})
	if err != nil {
		return domain.BufferStop{}, err
	}
	bs := domain.BufferStop{ID: id, Track: t.id, Position: position}
	b.bufferStops = append(b.bufferStops, bs)
	return bs, nil
}

// Build validates the infrastructure and returns it. The builder is finished
// afterwards, whether or not Build succeeds.
func (b *Builder) Build() (*domain.Infra, error) {
	if b.built {
		return nil, domain.ErrBuilt
	}
	b.built = true
	if b.err != nil {
		return nil, fmt.Errorf("build: %w", b.err)
	}
	infra := b.snapshot()
	if err := infra.Validate(); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return infra, nil
}

// snapshot deep-copies the builder state into a document.
func (b *Builder) snapshot() *domain.Infra {
	infra := &domain.Infra{
		Version:           domain.RailJSONVersion,
		TrackSections:     make([]domain.TrackSection, 0, len(b.tracks)),
		Switches:          make([]domain.Switch, 0, len(b.switches)),
		Links:             slices.Clone(b.links),
		Detectors:         make([]domain.Detector, 0, len(b.detectors)),
		Signals:           make([]domain.Signal, 0, len(b.signals)),
		SpeedSections:     make([]domain.SpeedSection, 0, len(b.speedSections)),
		Electrifications:  make([]domain.Electrification, 0, len(b.electrifications)),
		OperationalPoints: make([]domain.OperationalPoint, 0, len(b.operationalPoints)),
		BufferStops:       slices.Clone(b.bufferStops),
	}
	if infra.Links == nil {
		infra.Links = []domain.Link{}
	}
	if infra.BufferStops == nil {
		infra.BufferStops = []domain.BufferStop{}
	}
	for _, t := range b.tracks {
		infra.TrackSections = append(infra.TrackSections, t.section())
	}
	for _, sw := range b.switches {
		sw.Ports = maps.Clone(sw.Ports)
		infra.Switches = append(infra.Switches, sw)
	}
	domain.SortSwitches(infra.Switches)
	for _, d := range b.detectors {
		infra.Detectors = append(infra.Detectors, d.det)
	}
	for _, s := range b.signals {
		infra.Signals = append(infra.Signals, s.snapshot())
	}
	for _, s := range b.speedSections {
		infra.SpeedSections = append(infra.SpeedSections, s.snapshot())
	}
	for _, e := range b.electrifications {
		e.Tracks = slices.Clone(e.Tracks)
		infra.Electrifications = append(infra.Electrifications, e)
	}
	for _, op := range b.operationalPoints {
		o := op.op
		o.Parts = slices.Clone(o.Parts)
		infra.OperationalPoints = append(infra.OperationalPoints, o)
	}
	infra.SortPositioned()
	return infra
}
