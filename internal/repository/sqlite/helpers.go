package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"railgen/internal/domain"
	"railgen/internal/repository"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToInt64Ptr safely converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		v := ni.Int64
		return &v
	}
	return nil
}

// int64PtrToNull safely converts *int64 to sql.NullInt64
func int64PtrToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// Timestamps are stored as unix nanoseconds so ordering and round trips stay exact.
func timeToUnix(t time.Time) int64 {
	return t.UnixNano()
}

func unixToTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// ============================================================================
// Run Row Scanner
// ============================================================================
//
// To add a column to the runs table:
// 1. Add field to runRow and APPEND it to scanArgs() and runColumns
// 2. Map it in toDomain() and runInsertArgs()
// 3. Add a migration in sqlite.go migrate()

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID          string
	Script      string
	Fingerprint string
	OutputDir   sql.NullString
	SummaryJSON sql.NullString
	CreatedAt   int64
	InfraID     sql.NullInt64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match runColumns order exactly:
// id, script, fingerprint, output_dir, summary, created_at, infra_id
func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,          // 1
		&r.Script,      // 2
		&r.Fingerprint, // 3
		&r.OutputDir,   // 4
		&r.SummaryJSON, // 5
		&r.CreatedAt,   // 6
		&r.InfraID,     // 7
	}
}

// toDomain converts the scanned row to a repository.Run
func (r *runRow) toDomain() (*repository.Run, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", r.ID, err)
	}

	run := &repository.Run{
		ID:          id,
		Script:      r.Script,
		Fingerprint: r.Fingerprint,
		OutputDir:   nullToString(r.OutputDir),
		CreatedAt:   unixToTime(r.CreatedAt),
		InfraID:     nullToInt64Ptr(r.InfraID),
	}

	if r.SummaryJSON.Valid && r.SummaryJSON.String != "" {
		var summary domain.Summary
		if err := json.Unmarshal([]byte(r.SummaryJSON.String), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		run.Summary = summary
	}

	return run, nil
}

// runColumns returns the SELECT column list for run queries
const runColumns = `id, script, fingerprint, output_dir, summary, created_at, infra_id`

// runInsertArgs prepares arguments for run INSERT
// Returns: id, script, fingerprint, output_dir, summary, created_at, infra_id
func runInsertArgs(run *repository.Run) ([]interface{}, error) {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	return []interface{}{
		run.ID.String(),
		run.Script,
		run.Fingerprint,
		stringToNull(run.OutputDir),
		string(summary),
		timeToUnix(run.CreatedAt),
		int64PtrToNull(run.InfraID),
	}, nil
}
