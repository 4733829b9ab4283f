package codec

import (
	"encoding/json"
	"slices"

	"railgen/internal/domain"
)

// document is the RailJSON wire form. routes, neutral_sections and
// extended_switch_types are not modelled and always written empty.
type document struct {
	Version             string                `json:"version"`
	TrackSections       []domain.TrackSection `json:"track_sections"`
	Switches            []domain.Switch       `json:"switches"`
	Links               []domain.Link         `json:"links"`
	Detectors           []domain.Detector     `json:"detectors"`
	Signals             []domain.Signal       `json:"signals"`
	SpeedSections       []domain.SpeedSection `json:"speed_sections"`
	Electrifications    []electrification     `json:"electrifications"`
	OperationalPoints   []operationalPoint    `json:"operational_points"`
	BufferStops         []domain.BufferStop   `json:"buffer_stops"`
	Routes              []json.RawMessage     `json:"routes"`
	NeutralSections     []json.RawMessage     `json:"neutral_sections"`
	ExtendedSwitchTypes []json.RawMessage     `json:"extended_switch_types"`
}

type electrification struct {
	ID          string                                  `json:"id"`
	Voltage     string                                  `json:"voltage"`
	TrackRanges []domain.ApplicableDirectionsTrackRange `json:"track_ranges"`
}

type operationalPoint struct {
	ID         string                        `json:"id"`
	Parts      []domain.OperationalPointPart `json:"parts"`
	Extensions opExtensions                  `json:"extensions"`
	Weight     float64                       `json:"weight"`
}

type opExtensions struct {
	Identifier opIdentifier `json:"identifier"`
	SNCF       opSNCF       `json:"sncf"`
}

type opIdentifier struct {
	Name string `json:"name"`
	UIC  int64  `json:"uic"`
}

type opSNCF struct {
	Trigram string `json:"trigram"`
}

// nonNil returns s, or an empty slice when s is nil, so that arrays encode as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func toDocument(infra *domain.Infra) *document {
	doc := &document{
		Version:             infra.Version,
		TrackSections:       make([]domain.TrackSection, 0, len(infra.TrackSections)),
		Switches:            slices.Clone(infra.Switches),
		Links:               nonNil(infra.Links),
		Detectors:           nonNil(infra.Detectors),
		Signals:             make([]domain.Signal, 0, len(infra.Signals)),
		SpeedSections:       make([]domain.SpeedSection, 0, len(infra.SpeedSections)),
		Electrifications:    make([]electrification, 0, len(infra.Electrifications)),
		OperationalPoints:   make([]operationalPoint, 0, len(infra.OperationalPoints)),
		BufferStops:         nonNil(infra.BufferStops),
		Routes:              []json.RawMessage{},
		NeutralSections:     []json.RawMessage{},
		ExtendedSwitchTypes: []json.RawMessage{},
	}
	if doc.Version == "" {
		doc.Version = domain.RailJSONVersion
	}
	doc.Switches = nonNil(doc.Switches)
	domain.SortSwitches(doc.Switches)

	lengths := make(map[string]int64, len(infra.TrackSections))
	for _, t := range infra.TrackSections {
		t.Slopes = nonNil(t.Slopes)
		t.Curves = nonNil(t.Curves)
		doc.TrackSections = append(doc.TrackSections, t)
		lengths[t.ID] = t.Length
	}
	for _, s := range infra.Signals {
		s.LogicalSignals = slices.Clone(nonNil(s.LogicalSignals))
		for i := range s.LogicalSignals {
			ls := &s.LogicalSignals[i]
			ls.NextSignalingSystems = nonNil(ls.NextSignalingSystems)
			ls.ConditionalParameters = nonNil(ls.ConditionalParameters)
		}
		doc.Signals = append(doc.Signals, s)
	}
	for _, s := range infra.SpeedSections {
		s.TrackRanges = nonNil(s.TrackRanges)
		if s.SpeedLimitByTag == nil {
			s.SpeedLimitByTag = map[string]float64{}
		}
		doc.SpeedSections = append(doc.SpeedSections, s)
	}
	for _, e := range infra.Electrifications {
		we := electrification{
			ID:          e.ID,
			Voltage:     e.Voltage,
			TrackRanges: make([]domain.ApplicableDirectionsTrackRange, 0, len(e.Tracks)),
		}
		for _, track := range e.Tracks {
			we.TrackRanges = append(we.TrackRanges, domain.ApplicableDirectionsTrackRange{
				Track:                track,
				Begin:                0,
				End:                  lengths[track],
				ApplicableDirections: domain.Both,
			})
		}
		doc.Electrifications = append(doc.Electrifications, we)
	}
	for _, op := range infra.OperationalPoints {
		doc.OperationalPoints = append(doc.OperationalPoints, operationalPoint{
			ID:    op.ID,
			Parts: nonNil(op.Parts),
			Extensions: opExtensions{
				Identifier: opIdentifier{Name: op.ID, UIC: op.UIC},
				SNCF:       opSNCF{Trigram: op.Trigram},
			},
			Weight: op.Weight,
		})
	}
	return doc
}

// toInfra converts a decoded document back to the domain model. Electrification
// ranges must cover whole tracks in both directions.
func (doc *document) toInfra() (*domain.Infra, error) {
	infra := &domain.Infra{
		Version:           doc.Version,
		TrackSections:     nonNil(doc.TrackSections),
		Switches:          nonNil(doc.Switches),
		Links:             nonNil(doc.Links),
		Detectors:         nonNil(doc.Detectors),
		Signals:           nonNil(doc.Signals),
		SpeedSections:     nonNil(doc.SpeedSections),
		Electrifications:  make([]domain.Electrification, 0, len(doc.Electrifications)),
		OperationalPoints: make([]domain.OperationalPoint, 0, len(doc.OperationalPoints)),
		BufferStops:       nonNil(doc.BufferStops),
	}

	lengths := make(map[string]int64, len(doc.TrackSections))
	for _, t := range doc.TrackSections {
		lengths[t.ID] = t.Length
	}
	for _, we := range doc.Electrifications {
		e := domain.Electrification{ID: we.ID, Voltage: we.Voltage, Tracks: make([]string, 0, len(we.TrackRanges))}
		for _, r := range we.TrackRanges {
			length, ok := lengths[r.Track]
			if !ok {
				return nil, domain.Invalid(domain.KindElectrification, we.ID, "track_ranges.track", domain.ErrUnknownTrack, "%q", r.Track)
			}
			if r.Begin != 0 || r.End != length || r.ApplicableDirections != domain.Both {
				return nil, domain.Invalid(domain.KindElectrification, we.ID, "track_ranges", domain.ErrOutOfBounds,
					"partial range [%d, %d] %s on %s", r.Begin, r.End, r.ApplicableDirections, r.Track)
			}
			e.Tracks = append(e.Tracks, r.Track)
		}
		infra.Electrifications = append(infra.Electrifications, e)
	}
	for _, wop := range doc.OperationalPoints {
		infra.OperationalPoints = append(infra.OperationalPoints, domain.OperationalPoint{
			ID:      wop.ID,
			Trigram: wop.Extensions.SNCF.Trigram,
			UIC:     wop.Extensions.Identifier.UIC,
			Weight:  wop.Weight,
			Parts:   nonNil(wop.Parts),
		})
	}
	return infra, nil
}
