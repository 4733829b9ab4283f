package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"railgen/internal/domain"
)

// RailJSONCodec handles RailJSON import/export
type RailJSONCodec struct{}

// NewRailJSONCodec creates a new RailJSON codec
func NewRailJSONCodec() *RailJSONCodec {
	return &RailJSONCodec{}
}

// Format returns the codec format identifier
func (c *RailJSONCodec) Format() string {
	return "json"
}

// Parse reads a RailJSON document and validates it like Build does.
func (c *RailJSONCodec) Parse(r io.Reader) (*domain.Infra, error) {
	var doc document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse RailJSON: %w", err)
	}

	infra, err := doc.toInfra()
	if err != nil {
		return nil, fmt.Errorf("failed to convert RailJSON: %w", err)
	}
	if err := infra.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RailJSON: %w", err)
	}
	return infra, nil
}

// Export writes infra as an indented RailJSON document.
func (c *RailJSONCodec) Export(infra *domain.Infra, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(toDocument(infra)); err != nil {
		return fmt.Errorf("failed to encode RailJSON: %w", err)
	}

	return nil
}

// Marshal returns the compact RailJSON encoding of infra.
func Marshal(infra *domain.Infra) ([]byte, error) {
	data, err := json.Marshal(toDocument(infra))
	if err != nil {
		return nil, fmt.Errorf("failed to encode RailJSON: %w", err)
	}
	return data, nil
}
