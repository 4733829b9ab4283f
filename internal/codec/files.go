package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"railgen/internal/domain"
)

// File names of one generation directory.
const (
	InfraFileName          = "infra.json"
	ExternalInputsFileName = "external_generated_inputs.json"
)

// WriteGeneration writes infra.json and external_generated_inputs.json into dir,
// creating it if needed. A nil inputs writes the default companion document.
func WriteGeneration(dir string, infra *domain.Infra, inputs *ExternalInputs) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if inputs == nil {
		inputs = NewExternalInputs()
	}

	rail := NewRailJSONCodec()
	if err := writeFile(filepath.Join(dir, InfraFileName), func(w io.Writer) error {
		return rail.Export(infra, w)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, ExternalInputsFileName), func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(inputs); err != nil {
			return fmt.Errorf("failed to encode external inputs: %w", err)
		}
		return nil
	})
}

// WriteExport writes infra.<format> next to infra.json using exporter and
// returns the path written.
func WriteExport(dir string, infra *domain.Infra, exporter Exporter) (string, error) {
	path := filepath.Join(dir, "infra."+exporter.Format())
	if err := writeFile(path, func(w io.Writer) error {
		return exporter.Export(infra, w)
	}); err != nil {
		return "", err
	}
	return path, nil
}

// writeFile writes through a temp file in the same directory and renames it
// into place, so readers never observe a partial file.
func writeFile(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".railgen-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

// ReadGeneration loads a generation directory written by WriteGeneration.
func ReadGeneration(dir string) (*domain.Infra, *ExternalInputs, error) {
	f, err := os.Open(filepath.Join(dir, InfraFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", InfraFileName, err)
	}
	defer f.Close()

	infra, err := NewRailJSONCodec().Parse(f)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, ExternalInputsFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", ExternalInputsFileName, err)
	}
	inputs := &ExternalInputs{}
	if err := json.Unmarshal(data, inputs); err != nil {
		return nil, nil, err
	}
	return infra, inputs, nil
}
