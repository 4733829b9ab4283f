package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"railgen/internal/domain"
)

// ErrUnknownFormat is returned when no codec handles the requested format.
var ErrUnknownFormat = errors.New("codec: unknown format")

// Importer interface for reading infrastructure documents from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Infra, error)
	Format() string
}

// Exporter interface for writing infrastructure documents to various formats
type Exporter interface {
	Export(infra *domain.Infra, w io.Writer) error
	Format() string
}

var exporters = map[string]Exporter{
	"json": NewRailJSONCodec(),
	"yaml": NewYAMLCodec(),
}

// ExporterFor returns the exporter registered for format.
func ExporterFor(format string) (Exporter, error) {
	e, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Formats lists the registered export formats.
func Formats() []string {
	formats := make([]string, 0, len(exporters))
	for f := range exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
