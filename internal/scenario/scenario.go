// Package scenario holds the built-in generation scripts.
//
// A script populates a fresh builder; the generation service builds, encodes
// and writes the result under a directory named after the script.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"railgen/internal/builder"
	"railgen/internal/domain"
)

// ErrUnknownScenario is returned by Lookup for names that are not registered.
var ErrUnknownScenario = errors.New("scenario: unknown scenario")

// Script populates a builder. Name is also the output directory of the generation.
type Script interface {
	Name() string
	Generate(b *builder.Builder) error
}

// Described is implemented by scripts that carry a one-line description.
type Described interface {
	Description() string
}

type funcScript struct {
	name        string
	description string
	generate    func(b *builder.Builder) error
}

func (s funcScript) Name() string                      { return s.name }
func (s funcScript) Description() string               { return s.description }
func (s funcScript) Generate(b *builder.Builder) error { return s.generate(b) }

var registry = map[string]Script{}

func register(name, description string, generate func(b *builder.Builder) error) {
	registry[name] = funcScript{name: name, description: description, generate: generate}
}

func init() {
	register("circle_infra", "four tracks closed into a ring by a link and two point switches", circleInfra)
	register("one_line", "ten tracks chained with alternating orientation, BAL signals both ways", oneLine)
	register("takeover", "main line with a takeover track for minimal overtaking setups", takeover)
	register("small_infra", "two stations joined by a double-track line with a passing loop, BAL", smallInfra(domain.BAL))
	register("etcs_infra", "small_infra signalled with ETCS level 2", smallInfra(domain.ETCSLevel2))
}

// All returns every registered script sorted by name.
func All() []Script {
	scripts := make([]Script, 0, len(registry))
	for _, name := range Names() {
		scripts = append(scripts, registry[name])
	}
	return scripts
}

// Names returns the registered script names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the script registered under name.
func Lookup(name string) (Script, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}
