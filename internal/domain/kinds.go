package domain

import "fmt"

// EntityKind names a collection of the infrastructure document.
// It is also the prefix of generated labels ("<kind>.<n>").
type EntityKind string

const (
	KindTrackSection     EntityKind = "track_section"
	KindLink             EntityKind = "link"
	KindSwitch           EntityKind = "switch"
	KindDetector         EntityKind = "detector"
	KindSignal           EntityKind = "signal"
	KindSpeedSection     EntityKind = "speed_section"
	KindElectrification  EntityKind = "electrification"
	KindOperationalPoint EntityKind = "operational_point"
	KindBufferStop       EntityKind = "buffer_stop"
)

// EntityKinds lists every kind in document order.
func EntityKinds() []EntityKind {
	return []EntityKind{
		KindTrackSection,
		KindLink,
		KindSwitch,
		KindDetector,
		KindSignal,
		KindSpeedSection,
		KindElectrification,
		KindOperationalPoint,
		KindBufferStop,
	}
}

// Extremity is one of the two ends of a track section.
type Extremity string

const (
	Begin Extremity = "BEGIN"
	End   Extremity = "END"
)

// ParseExtremity accepts BEGIN/END in any case.
func ParseExtremity(s string) (Extremity, error) {
	switch s {
	case "BEGIN", "begin", "Begin":
		return Begin, nil
	case "END", "end", "End":
		return End, nil
	}
	return "", fmt.Errorf("extremity %q: %w", s, ErrUnknownVariant)
}

// ApplicableDirection restricts an object to one travel direction along its track, or both.
type ApplicableDirection string

const (
	StartToStop ApplicableDirection = "START_TO_STOP"
	StopToStart ApplicableDirection = "STOP_TO_START"
	Both        ApplicableDirection = "BOTH"
)

// ParseApplicableDirection validates a direction string.
func ParseApplicableDirection(s string) (ApplicableDirection, error) {
	switch d := ApplicableDirection(s); d {
	case StartToStop, StopToStart, Both:
		return d, nil
	}
	return "", fmt.Errorf("applicable direction %q: %w", s, ErrUnknownVariant)
}

// Valid reports whether d is one of the known directions.
func (d ApplicableDirection) Valid() bool {
	_, err := ParseApplicableDirection(string(d))
	return err == nil
}
