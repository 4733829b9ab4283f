package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"railgen/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export of the RailJSON document.
// The YAML tree mirrors the JSON one key for key.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Infra, error) {
	var tree any
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML: %w", err)
	}
	return NewRailJSONCodec().Parse(bytes.NewReader(data))
}

// Export exports the document to YAML
func (c *YAMLCodec) Export(infra *domain.Infra, w io.Writer) error {
	data, err := Marshal(infra)
	if err != nil {
		return err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(integral(tree)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// integral turns whole float64 values of a decoded JSON tree into int64 so that
// offsets keep an integer form in YAML.
func integral(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = integral(e)
		}
	case []any:
		for i, e := range t {
			t[i] = integral(e)
		}
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
	}
	return v
}
