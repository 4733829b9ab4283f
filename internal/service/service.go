package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"railgen/internal/builder"
	"railgen/internal/codec"
	"railgen/internal/domain"
	"railgen/internal/repository"
	"railgen/internal/scenario"
)

var (
	// ErrNoScripts is returned by GenerateAll when called without scripts.
	ErrNoScripts = errors.New("service: no scripts to generate")
	// ErrImportDisabled is returned by Import when no importer is configured.
	ErrImportDisabled = errors.New("service: no import target configured")
	// ErrInvalidName is returned for script names that cannot name an output directory.
	ErrInvalidName = errors.New("service: invalid script name")
)

// validName accepts single path elements only.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Importer uploads a generated document and returns the id the target assigned.
type Importer interface {
	ImportInfra(ctx context.Context, name string, generateData bool, infra *domain.Infra) (int64, error)
}

// Options configures a GenerationService.
type Options struct {
	OutputDir    string
	Format       string // optional extra export written next to infra.json
	GenerateData bool
	Importer     Importer // nil disables Import
}

// Generation is the outcome of running one script.
type Generation struct {
	Run   *repository.Run
	Infra *domain.Infra
	// Unchanged is set when the previous run of the script had the same fingerprint.
	Unchanged bool
}

// GenerationService runs scripts and keeps the catalog up to date
type GenerationService struct {
	repo     repository.Repository
	eventBus *EventBus
	opts     Options
	extra    codec.Exporter

	mu      sync.Mutex
	scripts map[string]*sync.Mutex // serialises runs of one script
}

// NewGenerationService creates a new generation service
func NewGenerationService(repo repository.Repository, eventBus *EventBus, opts Options) (*GenerationService, error) {
	if opts.OutputDir == "" {
		return nil, errors.New("service: empty output directory")
	}
	s := &GenerationService{
		repo:     repo,
		eventBus: eventBus,
		opts:     opts,
		scripts:  make(map[string]*sync.Mutex),
	}
	// infra.json is always written; any other format is an extra export
	if opts.Format != "" && opts.Format != "json" {
		exporter, err := codec.ExporterFor(opts.Format)
		if err != nil {
			return nil, err
		}
		s.extra = exporter
	}
	return s, nil
}

// Generate runs script and writes its document into <output dir>/<script name>.
func (s *GenerationService) Generate(ctx context.Context, script scenario.Script) (*Generation, error) {
	gen, err := s.generate(ctx, script)
	if err != nil {
		s.eventBus.Publish(Event{
			Type:    EventGenerationFailed,
			Payload: map[string]string{"script": script.Name(), "error": err.Error()},
		})
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventGenerated,
		Payload: gen.Run,
	})
	return gen, nil
}

func (s *GenerationService) generate(ctx context.Context, script scenario.Script) (*Generation, error) {
	name := script.Name()
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	unlock := s.lockScript(name)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := builder.New()
	if err := script.Generate(b); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	infra, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	dir := filepath.Join(s.opts.OutputDir, name)
	if err := codec.WriteGeneration(dir, infra, nil); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	if s.extra != nil {
		if _, err := codec.WriteExport(dir, infra, s.extra); err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
	}

	fingerprint, err := codec.Fingerprint(infra)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	gen := &Generation{Infra: infra}
	previous, err := s.repo.LatestRun(ctx, name)
	switch {
	case err == nil:
		gen.Unchanged = previous.Fingerprint == fingerprint
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	gen.Run = &repository.Run{
		Script:      name,
		Fingerprint: fingerprint,
		OutputDir:   dir,
		Summary:     infra.Summary(),
	}
	if err := s.repo.SaveRun(ctx, gen.Run); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	if gen.Unchanged {
		log.Printf("Generated %s into %s (unchanged): %s", name, dir, gen.Run.Summary)
	} else {
		log.Printf("Generated %s into %s: %s", name, dir, gen.Run.Summary)
	}
	return gen, nil
}

// lockScript holds the script's lock until the returned func is called, so the
// output directory and the latest catalog run are read and written by one
// generation at a time.
func (s *GenerationService) lockScript(name string) (unlock func()) {
	s.mu.Lock()
	lock, ok := s.scripts[name]
	if !ok {
		lock = &sync.Mutex{}
		s.scripts[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// GenerateAll runs every script. A failing script does not stop the others;
// the failures are joined into the returned error.
func (s *GenerationService) GenerateAll(ctx context.Context, scripts []scenario.Script) ([]*Generation, error) {
	if len(scripts) == 0 {
		return nil, ErrNoScripts
	}

	var (
		gens []*Generation
		errs []error
	)
	for _, script := range scripts {
		gen, err := s.Generate(ctx, script)
		if err != nil {
			if ctx.Err() != nil {
				return gens, err
			}
			errs = append(errs, err)
			continue
		}
		gens = append(gens, gen)
	}
	return gens, errors.Join(errs...)
}

// Import uploads the latest generation of script and records the assigned infra id.
func (s *GenerationService) Import(ctx context.Context, script string) (*repository.Run, error) {
	run, err := s.repo.LatestRun(ctx, script)
	if err != nil {
		return nil, err
	}
	return s.importRun(ctx, run)
}

// ImportRun uploads the generation of a specific run.
func (s *GenerationService) ImportRun(ctx context.Context, id uuid.UUID) (*repository.Run, error) {
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.importRun(ctx, run)
}

func (s *GenerationService) importRun(ctx context.Context, run *repository.Run) (*repository.Run, error) {
	if s.opts.Importer == nil {
		return nil, ErrImportDisabled
	}

	infra, _, err := codec.ReadGeneration(run.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("read generation of %s: %w", run.Script, err)
	}

	fingerprint, err := codec.Fingerprint(infra)
	if err != nil {
		return nil, err
	}
	if fingerprint != run.Fingerprint {
		log.Printf("Warning: %s changed on disk since run %s", run.OutputDir, run.ID)
	}

	infraID, err := s.opts.Importer.ImportInfra(ctx, run.Script, s.opts.GenerateData, infra)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", run.Script, err)
	}
	if err := s.repo.SetImportedInfra(ctx, run.ID, infraID); err != nil {
		return nil, err
	}
	run.InfraID = &infraID

	log.Printf("Imported %s as infra %d", run.Script, infraID)
	s.eventBus.Publish(Event{
		Type:    EventImported,
		Payload: run,
	})
	return run, nil
}

// Run returns a recorded run.
func (s *GenerationService) Run(ctx context.Context, id uuid.UUID) (*repository.Run, error) {
	return s.repo.GetRun(ctx, id)
}

// History lists recorded runs newest first. An empty script lists every script.
func (s *GenerationService) History(ctx context.Context, script string, limit int) ([]*repository.Run, error) {
	return s.repo.ListRuns(ctx, script, limit)
}
