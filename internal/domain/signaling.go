package domain

import (
	"fmt"
	"maps"
	"slices"
)

// SignalingSystem discriminates logical signal variants.
type SignalingSystem string

const (
	BAL        SignalingSystem = "BAL"
	BAPR       SignalingSystem = "BAPR"
	TVM300     SignalingSystem = "TVM300"
	TVM430     SignalingSystem = "TVM430"
	ETCSLevel2 SignalingSystem = "ETCS_LEVEL2"
)

// Flag values used by signal settings and parameters.
const (
	FlagTrue  = "true"
	FlagFalse = "false"
)

// signalingSchema lists the settings a system requires and the parameters it accepts,
// with the default used when a parameter is omitted.
type signalingSchema struct {
	settings   []string
	parameters map[string]string
}

var signalingSchemas = map[SignalingSystem]signalingSchema{
	BAL: {
		settings:   []string{"Nf"},
		parameters: map[string]string{"jaune_cli": FlagFalse},
	},
	BAPR: {
		settings:   []string{"Nf", "distant"},
		parameters: map[string]string{},
	},
	TVM300: {
		settings:   []string{"Nf"},
		parameters: map[string]string{},
	},
	TVM430: {
		settings:   []string{"Nf"},
		parameters: map[string]string{},
	},
	ETCSLevel2: {
		settings:   []string{"Nf"},
		parameters: map[string]string{},
	},
}

// SignalingSystems returns every supported system.
func SignalingSystems() []SignalingSystem {
	return []SignalingSystem{BAL, BAPR, TVM300, TVM430, ETCSLevel2}
}

// ParseSignalingSystem rejects systems outside the closed set.
func ParseSignalingSystem(s string) (SignalingSystem, error) {
	sys := SignalingSystem(s)
	if _, ok := signalingSchemas[sys]; !ok {
		return "", fmt.Errorf("signaling system %q: %w", s, ErrUnknownVariant)
	}
	return sys, nil
}

// Settings lists the settings the system requires, or nil for an unknown system.
func (s SignalingSystem) Settings() []string {
	return slices.Clone(signalingSchemas[s].settings)
}

// ConditionalParameters overrides a logical signal's parameters on one route.
// The route id is opaque and resolved by the consumer.
type ConditionalParameters struct {
	OnRoute    string            `json:"on_route"`
	Parameters map[string]string `json:"parameters"`
}

// LogicalSignal is one signaling-system specific behaviour of a physical signal.
type LogicalSignal struct {
	SignalingSystem       SignalingSystem         `json:"signaling_system"`
	NextSignalingSystems  []SignalingSystem       `json:"next_signaling_systems"`
	Settings              map[string]string       `json:"settings"`
	DefaultParameters     map[string]string       `json:"default_parameters"`
	ConditionalParameters []ConditionalParameters `json:"conditional_parameters"`
}

// NewLogicalSignal validates settings against the system schema and fills parameter defaults.
func NewLogicalSignal(system SignalingSystem, settings map[string]string) (LogicalSignal, error) {
	schema, ok := signalingSchemas[system]
	if !ok {
		return LogicalSignal{}, fmt.Errorf("signaling system %q: %w", system, ErrUnknownVariant)
	}
	ls := LogicalSignal{
		SignalingSystem:       system,
		NextSignalingSystems:  []SignalingSystem{},
		Settings:              maps.Clone(settings),
		DefaultParameters:     maps.Clone(schema.parameters),
		ConditionalParameters: []ConditionalParameters{},
	}
	if ls.Settings == nil {
		ls.Settings = map[string]string{}
	}
	if err := ls.Validate(); err != nil {
		return LogicalSignal{}, err
	}
	return ls, nil
}

// Validate checks the logical signal against its system schema.
func (ls *LogicalSignal) Validate() error {
	schema, ok := signalingSchemas[ls.SignalingSystem]
	if !ok {
		return fmt.Errorf("signaling system %q: %w", ls.SignalingSystem, ErrUnknownVariant)
	}
	for _, name := range schema.settings {
		v, ok := ls.Settings[name]
		if !ok {
			return fmt.Errorf("%s settings: missing %s: %w", ls.SignalingSystem, name, ErrUnknownVariant)
		}
		if !isFlag(v) {
			return fmt.Errorf("%s settings: %s=%q is not a flag: %w", ls.SignalingSystem, name, v, ErrUnknownVariant)
		}
	}
	for name := range ls.Settings {
		if !slices.Contains(schema.settings, name) {
			return fmt.Errorf("%s settings: unexpected %s: %w", ls.SignalingSystem, name, ErrUnknownVariant)
		}
	}
	if err := schema.checkParameters(ls.SignalingSystem, "default_parameters", ls.DefaultParameters); err != nil {
		return err
	}
	for _, cp := range ls.ConditionalParameters {
		if err := schema.checkParameters(ls.SignalingSystem, "conditional_parameters["+cp.OnRoute+"]", cp.Parameters); err != nil {
			return err
		}
	}
	for _, next := range ls.NextSignalingSystems {
		if _, ok := signalingSchemas[next]; !ok {
			return fmt.Errorf("%s next signaling system %q: %w", ls.SignalingSystem, next, ErrUnknownVariant)
		}
	}
	return nil
}

func (s signalingSchema) checkParameters(system SignalingSystem, field string, params map[string]string) error {
	for name, v := range params {
		if _, ok := s.parameters[name]; !ok {
			return fmt.Errorf("%s %s: unexpected %s: %w", system, field, name, ErrUnknownVariant)
		}
		if !isFlag(v) {
			return fmt.Errorf("%s %s: %s=%q is not a flag: %w", system, field, name, v, ErrUnknownVariant)
		}
	}
	return nil
}

func isFlag(v string) bool {
	return v == FlagTrue || v == FlagFalse
}
