package domain

// Point is a coordinate pair, longitude first.
type Point [2]float64

// LineString is a GeoJSON line geometry.
type LineString struct {
	Type        string  `json:"type"`
	Coordinates []Point `json:"coordinates"`
}

// MakeGeoLine wraps points into a LineString. Points are copied as given;
// callers must supply every vertex they want recorded.
func MakeGeoLine(points ...Point) *LineString {
	coords := make([]Point, len(points))
	copy(coords, points)
	return &LineString{Type: "LineString", Coordinates: coords}
}

