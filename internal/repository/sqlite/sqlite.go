package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"railgen/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository. ":memory:" keeps the catalog in memory.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		script TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		output_dir TEXT,
		summary JSON,
		created_at INTEGER NOT NULL,
		infra_id INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_script ON runs(script, created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun inserts a run. A nil id or zero creation time is filled in.
func (r *Repository) SaveRun(ctx context.Context, run *repository.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	args, err := runInsertArgs(run)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, args...); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a single run by ID
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*repository.Run, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs WHERE id = ?
	`, id.String()).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return row.toDomain()
}

// ListRuns returns runs newest first; limit <= 0 returns all of them.
func (r *Repository) ListRuns(ctx context.Context, script string, limit int) ([]*repository.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE ? = '' OR script = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, script, script, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*repository.Run
	for rows.Next() {
		var row runRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a script.
func (r *Repository) LatestRun(ctx context.Context, script string) (*repository.Run, error) {
	runs, err := r.ListRuns(ctx, script, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("latest run of %q: %w", script, repository.ErrNotFound)
	}
	return runs[0], nil
}

// SetImportedInfra records the infrastructure id returned by an import.
func (r *Repository) SetImportedInfra(ctx context.Context, id uuid.UUID, infraID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE runs SET infra_id = ? WHERE id = ?
	`, infraID, id.String())
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
