package domain

import (
	"errors"
	"testing"
)

func TestSwitchTypeArity(t *testing.T) {
	tests := []struct {
		st    SwitchType
		arity int
	}{
		{PointSwitch, 3},
		{Crossing, 4},
		{SingleSlipSwitch, 4},
		{DoubleSlipSwitch, 4},
		{"turntable", 0},
	}

	for _, tt := range tests {
		if got := tt.st.Arity(); got != tt.arity {
			t.Errorf("SwitchType(%s).Arity() = %d, want %d", tt.st, got, tt.arity)
		}
	}
}

func TestParseSwitchType(t *testing.T) {
	if _, err := ParseSwitchType("point_switch"); err != nil {
		t.Errorf("expected point_switch to parse, got %v", err)
	}
	if _, err := ParseSwitchType("turntable"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestSortSwitches(t *testing.T) {
	switches := []Switch{
		{ID: "x1", SwitchType: Crossing},
		{ID: "p1", SwitchType: PointSwitch},
		{ID: "x2", SwitchType: Crossing},
		{ID: "p2", SwitchType: PointSwitch},
	}
	SortSwitches(switches)

	want := []string{"p1", "p2", "x1", "x2"}
	for i, id := range want {
		if switches[i].ID != id {
			t.Errorf("switch[%d] = %s, want %s", i, switches[i].ID, id)
		}
	}
}

func TestMakeGeoLine(t *testing.T) {
	points := []Point{{0, 0}, {1, 1}}
	line := MakeGeoLine(points...)
	points[0] = Point{9, 9}

	if line.Type != "LineString" {
		t.Errorf("expected LineString, got %s", line.Type)
	}
	if len(line.Coordinates) != 2 || line.Coordinates[0] != (Point{0, 0}) {
		t.Errorf("expected coordinates to be copied, got %v", line.Coordinates)
	}
}

func TestParseDirectionAndExtremity(t *testing.T) {
	if d, err := ParseApplicableDirection("BOTH"); err != nil || d != Both {
		t.Errorf("ParseApplicableDirection(BOTH) = %s, %v", d, err)
	}
	if _, err := ParseApplicableDirection("FORWARD"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
	if e, err := ParseExtremity("end"); err != nil || e != End {
		t.Errorf("ParseExtremity(end) = %s, %v", e, err)
	}
	if _, err := ParseExtremity("middle"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}
