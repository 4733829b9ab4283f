package codec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ElectricalProfilesSection is the section holding derived electrical profiles.
const ElectricalProfilesSection = "electrical_profiles"

// ExternalInputs is the companion document of externally generated inputs.
// Sections are opaque JSON values keyed by name and passed through untouched.
type ExternalInputs struct {
	sections map[string]json.RawMessage
}

// NewExternalInputs returns the default companion document: an empty electrical
// profile set.
func NewExternalInputs() *ExternalInputs {
	in := &ExternalInputs{sections: make(map[string]json.RawMessage)}
	in.sections[ElectricalProfilesSection] = json.RawMessage(`{"levels":[],"level_order":{}}`)
	return in
}

// Set stores v (any JSON-encodable value) under name.
func (in *ExternalInputs) Set(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode external input %s: %w", name, err)
	}
	if in.sections == nil {
		in.sections = make(map[string]json.RawMessage)
	}
	in.sections[name] = data
	return nil
}

// Section returns the raw JSON stored under name.
func (in *ExternalInputs) Section(name string) (json.RawMessage, bool) {
	data, ok := in.sections[name]
	return data, ok
}

// Names lists the section names in sorted order.
func (in *ExternalInputs) Names() []string {
	names := make([]string, 0, len(in.sections))
	for name := range in.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the sections as one JSON object.
func (in *ExternalInputs) MarshalJSON() ([]byte, error) {
	if in.sections == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(in.sections)
}

// UnmarshalJSON replaces the sections with those of a JSON object.
func (in *ExternalInputs) UnmarshalJSON(data []byte) error {
	sections := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("failed to parse external inputs: %w", err)
	}
	in.sections = sections
	return nil
}

// ElectricalProfileSet is the shape of the electrical_profiles section.
type ElectricalProfileSet struct {
	Levels     []json.RawMessage   `json:"levels"`
	LevelOrder map[string][]string `json:"level_order"`
}

// ElectricalProfiles decodes the electrical_profiles section.
func (in *ExternalInputs) ElectricalProfiles() (*ElectricalProfileSet, error) {
	data, ok := in.Section(ElectricalProfilesSection)
	if !ok {
		return nil, fmt.Errorf("external inputs: missing section %s", ElectricalProfilesSection)
	}
	var set ElectricalProfileSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ElectricalProfilesSection, err)
	}
	return &set, nil
}
