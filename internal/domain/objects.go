package domain

// DefaultSightDistance is used when a signal does not specify one.
const DefaultSightDistance int64 = 400

// Detector delimits occupancy zones.
type Detector struct {
	ID       string `json:"id"`
	Track    string `json:"track"`
	Position int64  `json:"position"`
}

// Signal is a physical signal carrying one or more logical signals.
type Signal struct {
	ID               string              `json:"id"`
	Track            string              `json:"track"`
	Position         int64               `json:"position"`
	Direction        ApplicableDirection `json:"direction"`
	IsRouteDelimiter bool                `json:"is_route_delimiter"`
	SightDistance    int64               `json:"sight_distance"`
	LogicalSignals   []LogicalSignal     `json:"logical_signals"`
}

// SpeedSection is a speed restriction over directional track ranges.
// A nil OnRoutes means the restriction applies regardless of route.
type SpeedSection struct {
	ID              string                           `json:"id"`
	SpeedLimit      float64                          `json:"speed_limit"`
	SpeedLimitByTag map[string]float64               `json:"speed_limit_by_tag"`
	TrackRanges     []ApplicableDirectionsTrackRange `json:"track_ranges"`
	OnRoutes        []string                         `json:"on_routes"`
}

// Electrification covers whole track sections with one voltage profile.
type Electrification struct {
	ID      string
	Voltage string
	Tracks  []string
}

// OperationalPointPart anchors an operational point on a track.
type OperationalPointPart struct {
	Track    string `json:"track"`
	Position int64  `json:"position"`
}

// OperationalPoint is a named point of interest (station, junction).
type OperationalPoint struct {
	ID      string
	Trigram string
	UIC     int64
	Weight  float64
	Parts   []OperationalPointPart
}

// BufferStop marks a hard stop at the end of a track.
type BufferStop struct {
	ID       string `json:"id"`
	Track    string `json:"track"`
	Position int64  `json:"position"`
}
