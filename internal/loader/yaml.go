package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"railgen/internal/builder"
	"railgen/internal/domain"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScript is returned for scripts that cannot be mapped onto builder calls.
var ErrInvalidScript = errors.New("loader: invalid script")

// ScriptYAML represents the YAML file structure of a topology script
type ScriptYAML struct {
	Name              string                 `yaml:"name"`
	Description       string                 `yaml:"description,omitempty"`
	Tracks            []TrackYAML            `yaml:"tracks"`
	Links             []LinkYAML             `yaml:"links,omitempty"`
	Switches          []SwitchYAML           `yaml:"switches,omitempty"`
	SpeedSections     []SpeedSectionYAML     `yaml:"speed_sections,omitempty"`
	Electrifications  []ElectrificationYAML  `yaml:"electrifications,omitempty"`
	OperationalPoints []OperationalPointYAML `yaml:"operational_points,omitempty"`
}

// TrackYAML represents a track section and the objects placed on it
type TrackYAML struct {
	Label       string           `yaml:"label,omitempty"`
	Length      int64            `yaml:"length"`
	Begin       *domain.Point    `yaml:"begin,omitempty"`
	End         *domain.Point    `yaml:"end,omitempty"`
	Geometry    []domain.Point   `yaml:"geometry,omitempty"`
	Slopes      []RangeYAML      `yaml:"slopes,omitempty"`
	Curves      []RangeYAML      `yaml:"curves,omitempty"`
	Detectors   []PositionedYAML `yaml:"detectors,omitempty"`
	Signals     []SignalYAML     `yaml:"signals,omitempty"`
	BufferStops []PositionedYAML `yaml:"buffer_stops,omitempty"`
}

// RangeYAML is a slope (Value = gradient) or curve (Value = radius)
type RangeYAML struct {
	Begin int64   `yaml:"begin"`
	End   int64   `yaml:"end"`
	Value float64 `yaml:"value"`
}

// PositionedYAML is a labelled offset on the enclosing track
type PositionedYAML struct {
	Label    string `yaml:"label,omitempty"`
	Position int64  `yaml:"position"`
}

// SignalYAML represents a signal. When Detector is set the signal takes its position.
type SignalYAML struct {
	Label          string              `yaml:"label,omitempty"`
	Position       int64               `yaml:"position,omitempty"`
	Detector       string              `yaml:"detector,omitempty"`
	Direction      string              `yaml:"direction,omitempty"`
	RouteDelimiter bool                `yaml:"route_delimiter,omitempty"`
	SightDistance  *int64              `yaml:"sight_distance,omitempty"`
	LogicalSignals []LogicalSignalYAML `yaml:"logical_signals,omitempty"`
}

// LogicalSignalYAML represents one logical signal of a signal
type LogicalSignalYAML struct {
	System                string                      `yaml:"system"`
	Settings              FlagMap                     `yaml:"settings,omitempty"`
	Next                  []string                    `yaml:"next,omitempty"`
	DefaultParameters     FlagMap                     `yaml:"default_parameters,omitempty"`
	ConditionalParameters []ConditionalParametersYAML `yaml:"conditional_parameters,omitempty"`
}

// ConditionalParametersYAML is a per-route parameter override
type ConditionalParametersYAML struct {
	OnRoute    string  `yaml:"on_route"`
	Parameters FlagMap `yaml:"parameters"`
}

// LinkYAML joins two endpoints written as "<track>.begin" or "<track>.end"
type LinkYAML struct {
	Label string `yaml:"label,omitempty"`
	Src   string `yaml:"src"`
	Dst   string `yaml:"dst"`
}

// SwitchYAML binds endpoints to the ports of a switch type
type SwitchYAML struct {
	Label string            `yaml:"label,omitempty"`
	Type  string            `yaml:"type"`
	Ports map[string]string `yaml:"ports"`
}

// SpeedSectionYAML represents a speed restriction (limit in m/s)
type SpeedSectionYAML struct {
	Label           string             `yaml:"label,omitempty"`
	SpeedLimit      float64            `yaml:"speed_limit"`
	SpeedLimitByTag map[string]float64 `yaml:"speed_limit_by_tag,omitempty"`
	OnRoutes        []string           `yaml:"on_routes,omitempty"`
	TrackRanges     []TrackRangeYAML   `yaml:"track_ranges"`
}

// TrackRangeYAML is a directional range on a track
type TrackRangeYAML struct {
	Track     string `yaml:"track"`
	Begin     int64  `yaml:"begin"`
	End       int64  `yaml:"end"`
	Direction string `yaml:"direction,omitempty"`
}

// ElectrificationYAML covers whole tracks with a voltage
type ElectrificationYAML struct {
	Label   string   `yaml:"label,omitempty"`
	Voltage string   `yaml:"voltage"`
	Tracks  []string `yaml:"tracks"`
}

// OperationalPointYAML represents an operational point and its parts
type OperationalPointYAML struct {
	Label   string     `yaml:"label,omitempty"`
	Trigram string     `yaml:"trigram,omitempty"`
	UIC     int64      `yaml:"uic,omitempty"`
	Weight  float64    `yaml:"weight,omitempty"`
	Parts   []PartYAML `yaml:"parts"`
}

// PartYAML anchors an operational point on a track
type PartYAML struct {
	Track    string `yaml:"track"`
	Position int64  `yaml:"position"`
}

// FlagMap holds string settings. Unquoted YAML booleans are kept as "true"/"false".
type FlagMap map[string]string

// UnmarshalYAML reads scalar values verbatim.
func (m *FlagMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	out := make(FlagMap, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %s must be a scalar", v.Line, k.Value)
		}
		out[k.Value] = v.Value
	}
	*m = out
	return nil
}

// Script is a topology script read from YAML. It drives a builder the way
// a hand-written generation script would.
type Script struct {
	name string
	def  ScriptYAML
}

// LoadScript loads a script from a YAML file. The script is named after the
// file when it has no name of its own.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.name == "" {
		s.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseScript parses a script from YAML bytes
func ParseScript(data []byte) (*Script, error) {
	var def ScriptYAML
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &Script{name: def.Name, def: def}, nil
}

// Name returns the script name, used as its output directory.
func (s *Script) Name() string {
	return s.name
}

// Description returns the free-form script description.
func (s *Script) Description() string {
	return s.def.Description
}

// Generate replays the script on b.
func (s *Script) Generate(b *builder.Builder) error {
	g := &generation{
		b:         b,
		tracks:    make(map[string]*builder.Track),
		detectors: make(map[string]*builder.Detector),
	}
	return g.run(&s.def)
}

type generation struct {
	b         *builder.Builder
	tracks    map[string]*builder.Track
	detectors map[string]*builder.Detector
}

func (g *generation) run(def *ScriptYAML) error {
	handles := make([]*builder.Track, len(def.Tracks))
	for i := range def.Tracks {
		t, err := g.track(&def.Tracks[i])
		if err != nil {
			return err
		}
		handles[i] = t
	}
	for i := range def.Tracks {
		if err := g.trackObjects(handles[i], &def.Tracks[i]); err != nil {
			return err
		}
	}
	for _, l := range def.Links {
		src, err := g.endpoint(l.Src)
		if err != nil {
			return fmt.Errorf("link %s: %w", l.Label, err)
		}
		dst, err := g.endpoint(l.Dst)
		if err != nil {
			return fmt.Errorf("link %s: %w", l.Label, err)
		}
		if _, err := g.b.AddLink(src, dst, l.Label); err != nil {
			return err
		}
	}
	for _, sw := range def.Switches {
		ports := make(map[string]*builder.Endpoint, len(sw.Ports))
		for port, ref := range sw.Ports {
			ep, err := g.endpoint(ref)
			if err != nil {
				return fmt.Errorf("switch %s port %s: %w", sw.Label, port, err)
			}
			ports[port] = ep
		}
		if _, err := g.b.AddSwitch(domain.SwitchType(sw.Type), sw.Label, ports); err != nil {
			return err
		}
	}
	for i := range def.SpeedSections {
		if err := g.speedSection(&def.SpeedSections[i]); err != nil {
			return err
		}
	}
	for _, e := range def.Electrifications {
		tracks := make([]*builder.Track, 0, len(e.Tracks))
		for _, label := range e.Tracks {
			t, err := g.lookup(label)
			if err != nil {
				return fmt.Errorf("electrification %s: %w", e.Label, err)
			}
			tracks = append(tracks, t)
		}
		if _, err := g.b.AddElectrification(e.Label, e.Voltage, tracks...); err != nil {
			return err
		}
	}
	for _, o := range def.OperationalPoints {
		op, err := g.b.AddOperationalPoint(o.Label, o.Trigram, o.UIC, o.Weight)
		if err != nil {
			return err
		}
		for _, part := range o.Parts {
			t, err := g.lookup(part.Track)
			if err != nil {
				return fmt.Errorf("operational point %s: %w", op.ID(), err)
			}
			if err := op.AddPart(t, part.Position); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generation) track(y *TrackYAML) (*builder.Track, error) {
	t, err := g.b.AddTrackSection(y.Length, y.Label)
	if err != nil {
		return nil, err
	}
	// unlabelled tracks are referenced by their generated id
	g.tracks[t.ID()] = t
	if y.Begin != nil {
		if err := t.Begin().SetCoords(y.Begin[0], y.Begin[1]); err != nil {
			return nil, err
		}
	}
	if y.End != nil {
		if err := t.End().SetCoords(y.End[0], y.End[1]); err != nil {
			return nil, err
		}
	}
	if len(y.Geometry) > 0 {
		if err := t.SetGeometry(y.Geometry...); err != nil {
			return nil, err
		}
	}
	for _, sl := range y.Slopes {
		if err := t.AddSlope(sl.Begin, sl.End, sl.Value); err != nil {
			return nil, err
		}
	}
	for _, c := range y.Curves {
		if err := t.AddCurve(c.Begin, c.End, c.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// trackObjects places detectors, signals and buffer stops once every track exists.
func (g *generation) trackObjects(t *builder.Track, y *TrackYAML) error {
	for _, d := range y.Detectors {
		det, err := t.AddDetector(d.Position, d.Label)
		if err != nil {
			return err
		}
		g.detectors[det.ID()] = det
	}
	for i := range y.Signals {
		if err := g.signal(t, &y.Signals[i]); err != nil {
			return err
		}
	}
	for _, bs := range y.BufferStops {
		if _, err := t.AddBufferStop(bs.Position, bs.Label); err != nil {
			return err
		}
	}
	return nil
}

func (g *generation) signal(t *builder.Track, y *SignalYAML) error {
	opts := builder.SignalOptions{
		Label:            y.Label,
		Direction:        domain.ApplicableDirection(y.Direction),
		IsRouteDelimiter: y.RouteDelimiter,
		SightDistance:    y.SightDistance,
	}
	var (
		sig *builder.Signal
		err error
	)
	if y.Detector != "" {
		// signals take their detector from the track they are listed under
		det, ok := g.detectors[y.Detector]
		if !ok || det.Track() != t {
			return fmt.Errorf("%w: signal %q on track %s references detector %q, which is not on that track",
				ErrInvalidScript, y.Label, t.ID(), y.Detector)
		}
		sig, err = g.b.AddSignalAtDetector(det, opts)
	} else {
		sig, err = t.AddSignal(y.Position, opts)
	}
	if err != nil {
		return err
	}

	for _, ly := range y.LogicalSignals {
		next := make([]domain.SignalingSystem, 0, len(ly.Next))
		for _, n := range ly.Next {
			next = append(next, domain.SignalingSystem(n))
		}
		ls, err := sig.AddLogicalSignal(domain.SignalingSystem(ly.System), ly.Settings, next...)
		if err != nil {
			return err
		}
		for name, value := range ly.DefaultParameters {
			if err := ls.SetDefaultParameter(name, value); err != nil {
				return err
			}
		}
		for _, cp := range ly.ConditionalParameters {
			if err := ls.AddConditionalParameters(cp.OnRoute, cp.Parameters); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generation) speedSection(y *SpeedSectionYAML) error {
	sec, err := g.b.AddSpeedSection(y.SpeedLimit, y.Label)
	if err != nil {
		return err
	}
	for tag, limit := range y.SpeedLimitByTag {
		if err := sec.SetSpeedLimitByTag(tag, limit); err != nil {
			return err
		}
	}
	if y.OnRoutes != nil {
		if err := sec.RestrictToRoutes(y.OnRoutes...); err != nil {
			return err
		}
	}
	for _, r := range y.TrackRanges {
		t, err := g.lookup(r.Track)
		if err != nil {
			return fmt.Errorf("speed section %s: %w", sec.ID(), err)
		}
		dir := domain.ApplicableDirection(r.Direction)
		if dir == "" {
			dir = domain.Both
		}
		if err := sec.AddTrackRange(t, r.Begin, r.End, dir); err != nil {
			return err
		}
	}
	return nil
}

// lookup resolves a track label.
func (g *generation) lookup(label string) (*builder.Track, error) {
	t, ok := g.tracks[label]
	if !ok {
		return nil, fmt.Errorf("track %q: %w", label, domain.ErrUnknownTrack)
	}
	return t, nil
}

// endpoint resolves "<track>.begin" or "<track>.end". Track labels may contain dots.
func (g *generation) endpoint(ref string) (*builder.Endpoint, error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 {
		return nil, fmt.Errorf("%w: endpoint %q is not <track>.<begin|end>", ErrInvalidScript, ref)
	}
	t, err := g.lookup(ref[:i])
	if err != nil {
		return nil, err
	}
	ext, err := domain.ParseExtremity(ref[i+1:])
	if err != nil {
		return nil, err
	}
	if ext == domain.Begin {
		return t.Begin(), nil
	}
	return t.End(), nil
}
