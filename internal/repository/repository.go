package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"railgen/internal/domain"
)

// ErrNotFound is returned when a run does not exist in the catalog.
var ErrNotFound = errors.New("repository: run not found")

// Run records one generation of a script.
type Run struct {
	ID          uuid.UUID      `json:"id"`
	Script      string         `json:"script"`
	Fingerprint string         `json:"fingerprint"`
	OutputDir   string         `json:"output_dir"`
	Summary     domain.Summary `json:"summary"`
	CreatedAt   time.Time      `json:"created_at"`
	InfraID     *int64         `json:"infra_id,omitempty"` // set once imported
}

// Imported reports whether the run was sent to the infrastructure service.
func (r *Run) Imported() bool {
	return r.InfraID != nil
}

// Repository defines the interface for generation catalog access
type Repository interface {
	// Read operations
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns runs newest first. An empty script lists every script.
	ListRuns(ctx context.Context, script string, limit int) ([]*Run, error)
	LatestRun(ctx context.Context, script string) (*Run, error)

	// Write operations
	SaveRun(ctx context.Context, run *Run) error
	SetImportedInfra(ctx context.Context, id uuid.UUID, infraID int64) error

	// Close releases resources
	Close() error
}
