// Package store defines the persistence layer for parse run history.
package store

import (
	"context"
	"time"

	"github.com/avermeer/migrep/internal/domain"
)

// Store defines the persistence layer interface for parse runs and their
// extracted report data.
type Store interface {
	// SaveRun persists a run together with the data extracted during it.
	// Failed runs carry a failure reason and no data.
	SaveRun(ctx context.Context, run Run, data domain.MigrationReportData) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (Run, error)

	// ListRuns retrieves the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetReport reconstructs the extracted data for a run.
	GetReport(ctx context.Context, runID string) (domain.MigrationReportData, error)

	// LatestRun returns the most recent run.
	LatestRun(ctx context.Context) (Run, error)

	Close() error
}

// Run represents a single extraction execution.
type Run struct {
	RunID      string
	Timestamp  time.Time
	ReportPath string
	RepoURL    string
	Title      string
	// FailureReason is empty for successful runs, otherwise the extraction
	// failure category ("not_found", "empty", "unparseable").
	FailureReason string
}

// Succeeded reports whether the run produced extracted data.
func (r Run) Succeeded() bool {
	return r.FailureReason == ""
}
