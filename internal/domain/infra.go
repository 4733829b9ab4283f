package domain

import (
	"fmt"
	"sort"
)

// RailJSONVersion is the document format version written by railgen.
const RailJSONVersion = "3.4.13"

// Infra is a complete, validated infrastructure. It must not be modified once built.
type Infra struct {
	Version           string
	TrackSections     []TrackSection
	Switches          []Switch
	Links             []Link
	Detectors         []Detector
	Signals           []Signal
	SpeedSections     []SpeedSection
	Electrifications  []Electrification
	OperationalPoints []OperationalPoint
	BufferStops       []BufferStop
}

// Summary counts the entities of an infrastructure.
type Summary struct {
	TrackSections     int `json:"track_sections"`
	Links             int `json:"links"`
	Switches          int `json:"switches"`
	Detectors         int `json:"detectors"`
	Signals           int `json:"signals"`
	SpeedSections     int `json:"speed_sections"`
	Electrifications  int `json:"electrifications"`
	OperationalPoints int `json:"operational_points"`
	BufferStops       int `json:"buffer_stops"`
	DanglingEndpoints int `json:"dangling_endpoints"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d tracks, %d links, %d switches, %d detectors, %d signals, %d dangling endpoints",
		s.TrackSections, s.Links, s.Switches, s.Detectors, s.Signals, s.DanglingEndpoints)
}

// Summary returns entity counts.
func (in *Infra) Summary() Summary {
	return Summary{
		TrackSections:     len(in.TrackSections),
		Links:             len(in.Links),
		Switches:          len(in.Switches),
		Detectors:         len(in.Detectors),
		Signals:           len(in.Signals),
		SpeedSections:     len(in.SpeedSections),
		Electrifications:  len(in.Electrifications),
		OperationalPoints: len(in.OperationalPoints),
		BufferStops:       len(in.BufferStops),
		DanglingEndpoints: len(in.DanglingEndpoints()),
	}
}

// Track looks up a track section by id.
func (in *Infra) Track(id string) (*TrackSection, bool) {
	for i := range in.TrackSections {
		if in.TrackSections[i].ID == id {
			return &in.TrackSections[i], true
		}
	}
	return nil, false
}

// DanglingEndpoints returns the endpoints not consumed by any link or switch port,
// in track order (BEGIN before END).
func (in *Infra) DanglingEndpoints() []TrackEndpoint {
	used := in.consumers()
	var dangling []TrackEndpoint
	for _, t := range in.TrackSections {
		for _, ext := range []Extremity{Begin, End} {
			ep := TrackEndpoint{Track: t.ID, Endpoint: ext}
			if _, ok := used[ep]; !ok {
				dangling = append(dangling, ep)
			}
		}
	}
	return dangling
}

func (in *Infra) consumers() map[TrackEndpoint]string {
	used := make(map[TrackEndpoint]string)
	for _, l := range in.Links {
		used[l.Src] = l.ID
		used[l.Dst] = l.ID
	}
	for _, s := range in.Switches {
		for _, ep := range s.Ports {
			used[ep] = s.ID
		}
	}
	return used
}

// SortPositioned orders detectors and signals by track (in track section order)
// then ascending position. Equal positions keep their relative order.
func (in *Infra) SortPositioned() {
	rank := make(map[string]int, len(in.TrackSections))
	for i, t := range in.TrackSections {
		rank[t.ID] = i
	}
	sort.SliceStable(in.Detectors, func(i, j int) bool {
		a, b := in.Detectors[i], in.Detectors[j]
		if rank[a.Track] != rank[b.Track] {
			return rank[a.Track] < rank[b.Track]
		}
		return a.Position < b.Position
	})
	sort.SliceStable(in.Signals, func(i, j int) bool {
		a, b := in.Signals[i], in.Signals[j]
		if rank[a.Track] != rank[b.Track] {
			return rank[a.Track] < rank[b.Track]
		}
		return a.Position < b.Position
	})
}

// Validate checks the global invariants of the document and returns the first violation.
func (in *Infra) Validate() error {
	v := validator{infra: in, tracks: make(map[string]int64, len(in.TrackSections))}
	return v.run()
}

type validator struct {
	infra  *Infra
	tracks map[string]int64
}

func (v *validator) run() error {
	steps := []func() error{
		v.trackSections,
		v.topology,
		v.detectors,
		v.signals,
		v.speedSections,
		v.electrifications,
		v.operationalPoints,
		v.bufferStops,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func unique(kind EntityKind) func(id string) error {
	seen := make(map[string]struct{})
	return func(id string) error {
		if id == "" {
			return Invalid(kind, id, "id", ErrUnknownVariant, "empty identifier")
		}
		if _, ok := seen[id]; ok {
			return Invalid(kind, id, "id", ErrDuplicateIdentifier, "")
		}
		seen[id] = struct{}{}
		return nil
	}
}

// length resolves a track reference for an entity.
func (v *validator) length(kind EntityKind, id, track string) (int64, error) {
	length, ok := v.tracks[track]
	if !ok {
		return 0, Invalid(kind, id, "track", ErrUnknownTrack, "%q", track)
	}
	return length, nil
}

func (v *validator) trackSections() error {
	check := unique(KindTrackSection)
	for _, t := range v.infra.TrackSections {
		if err := check(t.ID); err != nil {
			return err
		}
		if t.Length < 0 {
			return Invalid(KindTrackSection, t.ID, "length", ErrOutOfBounds, "negative length %d", t.Length)
		}
		for _, s := range t.Slopes {
			if err := CheckRange(KindTrackSection, t.ID, "slopes", s.Begin, s.End, t.Length); err != nil {
				return err
			}
			if err := CheckFinite(KindTrackSection, t.ID, "slopes.gradient", s.Gradient); err != nil {
				return err
			}
		}
		for _, c := range t.Curves {
			if err := CheckRange(KindTrackSection, t.ID, "curves", c.Begin, c.End, t.Length); err != nil {
				return err
			}
			if err := CheckFinite(KindTrackSection, t.ID, "curves.radius", c.Radius); err != nil {
				return err
			}
		}
		if t.Geo != nil {
			if err := CheckPoints(KindTrackSection, t.ID, "geo.coordinates", t.Geo.Coordinates...); err != nil {
				return err
			}
		}
		v.tracks[t.ID] = t.Length
	}
	return nil
}

func (v *validator) topology() error {
	used := make(map[TrackEndpoint]string)
	consume := func(kind EntityKind, id, field string, ep TrackEndpoint) error {
		if _, err := v.length(kind, id, ep.Track); err != nil {
			return err
		}
		if ep.Endpoint != Begin && ep.Endpoint != End {
			return Invalid(kind, id, field, ErrUnknownVariant, "endpoint %q", ep.Endpoint)
		}
		if owner, ok := used[ep]; ok {
			return Invalid(kind, id, field, ErrEndpointConsumed, "%s already bound to %s", ep, owner)
		}
		used[ep] = id
		return nil
	}

	checkLink := unique(KindLink)
	for _, l := range v.infra.Links {
		if err := checkLink(l.ID); err != nil {
			return err
		}
		if l.Src.Track == l.Dst.Track {
			return Invalid(KindLink, l.ID, "dst", ErrSelfLink, "%s", l.Src.Track)
		}
		if err := consume(KindLink, l.ID, "src", l.Src); err != nil {
			return err
		}
		if err := consume(KindLink, l.ID, "dst", l.Dst); err != nil {
			return err
		}
	}

	checkSwitch := unique(KindSwitch)
	for _, s := range v.infra.Switches {
		if err := checkSwitch(s.ID); err != nil {
			return err
		}
		if err := s.CheckPorts(); err != nil {
			return err
		}
		for _, port := range s.SwitchType.Ports() {
			if err := consume(KindSwitch, s.ID, "ports."+port, s.Ports[port]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) detectors() error {
	check := unique(KindDetector)
	for _, d := range v.infra.Detectors {
		if err := check(d.ID); err != nil {
			return err
		}
		length, err := v.length(KindDetector, d.ID, d.Track)
		if err != nil {
			return err
		}
		if err := CheckOffset(KindDetector, d.ID, "position", d.Position, length); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) signals() error {
	check := unique(KindSignal)
	for _, s := range v.infra.Signals {
		if err := check(s.ID); err != nil {
			return err
		}
		length, err := v.length(KindSignal, s.ID, s.Track)
		if err != nil {
			return err
		}
		if err := CheckOffset(KindSignal, s.ID, "position", s.Position, length); err != nil {
			return err
		}
		if !s.Direction.Valid() {
			return Invalid(KindSignal, s.ID, "direction", ErrUnknownVariant, "%q", s.Direction)
		}
		if s.SightDistance < 0 {
			return Invalid(KindSignal, s.ID, "sight_distance", ErrOutOfBounds, "negative sight distance %d", s.SightDistance)
		}
		for i := range s.LogicalSignals {
			if err := s.LogicalSignals[i].Validate(); err != nil {
				return Invalid(KindSignal, s.ID, fmt.Sprintf("logical_signals[%d]", i), err, "")
			}
		}
	}
	return nil
}

func (v *validator) speedSections() error {
	check := unique(KindSpeedSection)
	for _, s := range v.infra.SpeedSections {
		if err := check(s.ID); err != nil {
			return err
		}
		if err := CheckSpeed(KindSpeedSection, s.ID, "speed_limit", s.SpeedLimit); err != nil {
			return err
		}
		for tag, limit := range s.SpeedLimitByTag {
			if err := CheckSpeed(KindSpeedSection, s.ID, "speed_limit_by_tag."+tag, limit); err != nil {
				return err
			}
		}
		for i, r := range s.TrackRanges {
			if err := v.trackRange(KindSpeedSection, s.ID, fmt.Sprintf("track_ranges[%d]", i), r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) trackRange(kind EntityKind, id, field string, r ApplicableDirectionsTrackRange) error {
	length, err := v.length(kind, id, r.Track)
	if err != nil {
		return err
	}
	if !r.ApplicableDirections.Valid() {
		return Invalid(kind, id, field+".applicable_directions", ErrUnknownVariant, "%q", r.ApplicableDirections)
	}
	return CheckRange(kind, id, field, r.Begin, r.End, length)
}

func (v *validator) electrifications() error {
	check := unique(KindElectrification)
	for _, e := range v.infra.Electrifications {
		if err := check(e.ID); err != nil {
			return err
		}
		for _, track := range e.Tracks {
			if _, err := v.length(KindElectrification, e.ID, track); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) operationalPoints() error {
	check := unique(KindOperationalPoint)
	for _, op := range v.infra.OperationalPoints {
		if err := check(op.ID); err != nil {
			return err
		}
		if err := CheckFinite(KindOperationalPoint, op.ID, "weight", op.Weight); err != nil {
			return err
		}
		for i, part := range op.Parts {
			length, err := v.length(KindOperationalPoint, op.ID, part.Track)
			if err != nil {
				return err
			}
			if err := CheckOffset(KindOperationalPoint, op.ID, fmt.Sprintf("parts[%d].position", i), part.Position, length); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) bufferStops() error {
	check := unique(KindBufferStop)
	for _, b := range v.infra.BufferStops {
		if err := check(b.ID); err != nil {
			return err
		}
		length, err := v.length(KindBufferStop, b.ID, b.Track)
		if err != nil {
			return err
		}
		if err := CheckOffset(KindBufferStop, b.ID, "position", b.Position, length); err != nil {
			return err
		}
	}
	return nil
}
