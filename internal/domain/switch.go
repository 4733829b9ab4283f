package domain

import (
	"fmt"
	"slices"
	"sort"
)

// Link is a non-branching connection between endpoints of two distinct track sections.
type Link struct {
	ID  string        `json:"id"`
	Src TrackEndpoint `json:"src"`
	Dst TrackEndpoint `json:"dst"`
}

// SwitchType names a branching node kind. Each type has a fixed port list.
type SwitchType string

const (
	PointSwitch      SwitchType = "point_switch"
	Crossing         SwitchType = "crossing"
	SingleSlipSwitch SwitchType = "single_slip_switch"
	DoubleSlipSwitch SwitchType = "double_slip_switch"
)

var switchPorts = map[SwitchType][]string{
	PointSwitch:      {"A", "B1", "B2"},
	Crossing:         {"A1", "B1", "A2", "B2"},
	SingleSlipSwitch: {"A1", "B1", "A2", "B2"},
	DoubleSlipSwitch: {"A1", "B1", "A2", "B2"},
}

// SwitchTypes returns the supported switch types in document order.
func SwitchTypes() []SwitchType {
	return []SwitchType{PointSwitch, Crossing, SingleSlipSwitch, DoubleSlipSwitch}
}

// ParseSwitchType validates a switch type name.
func ParseSwitchType(s string) (SwitchType, error) {
	st := SwitchType(s)
	if _, ok := switchPorts[st]; !ok {
		return "", fmt.Errorf("switch type %q: %w", s, ErrUnknownVariant)
	}
	return st, nil
}

// Ports returns the port names of the switch type, or nil for an unknown type.
func (t SwitchType) Ports() []string {
	return slices.Clone(switchPorts[t])
}

// Arity is the number of ports the switch type binds.
func (t SwitchType) Arity() int {
	return len(switchPorts[t])
}

// Switch binds one endpoint to each port of its type.
type Switch struct {
	ID               string                   `json:"id"`
	SwitchType       SwitchType               `json:"switch_type"`
	Ports            map[string]TrackEndpoint `json:"ports"`
	GroupChangeDelay float64                  `json:"group_change_delay"`
}

// CheckPorts verifies that the port names match the switch type exactly.
func (s *Switch) CheckPorts() error {
	want, ok := switchPorts[s.SwitchType]
	if !ok {
		return Invalid(KindSwitch, s.ID, "switch_type", ErrUnknownVariant, "%q", s.SwitchType)
	}
	if len(s.Ports) != len(want) {
		return Invalid(KindSwitch, s.ID, "ports", ErrArityMismatch,
			"%s needs %d ports, got %d", s.SwitchType, len(want), len(s.Ports))
	}
	for _, port := range want {
		if _, ok := s.Ports[port]; !ok {
			return Invalid(KindSwitch, s.ID, "ports", ErrArityMismatch, "missing port %s", port)
		}
	}
	return nil
}

// SortSwitches groups switches by type in SwitchTypes order, keeping insertion order within a group.
func SortSwitches(switches []Switch) {
	rank := func(t SwitchType) int {
		if i := slices.Index(SwitchTypes(), t); i >= 0 {
			return i
		}
		return len(switchPorts)
	}
	sort.SliceStable(switches, func(i, j int) bool {
		return rank(switches[i].SwitchType) < rank(switches[j].SwitchType)
	})
}
