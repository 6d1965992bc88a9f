// Package sqlite persists parse runs and their extracted report data.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avermeer/migrep/internal/diff"
	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per extraction run, successful or failed
	CREATE TABLE IF NOT EXISTS parse_runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		report_path TEXT NOT NULL,
		repo_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		sections_count INTEGER NOT NULL DEFAULT 0
	);

	-- Inventory table rows from the report
	CREATE TABLE IF NOT EXISTS inventory_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		file TEXT NOT NULL,
		apis_used TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES parse_runs(run_id) ON DELETE CASCADE
	);

	-- Per-file diff sections; hunks are re-derived from diff_content on load
	CREATE TABLE IF NOT EXISTS file_diffs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		file TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		diff_content TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES parse_runs(run_id) ON DELETE CASCADE
	);

	-- Key changes; diff_position refers to the owning file_diffs position,
	-- -1 marks the report-level list. Keyed by position, not file name,
	-- because a file may legitimately repeat across diff sections.
	CREATE TABLE IF NOT EXISTS key_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		diff_position INTEGER NOT NULL DEFAULT -1,
		position INTEGER NOT NULL,
		change TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES parse_runs(run_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		note TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES parse_runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_run ON inventory_rows(run_id);
	CREATE INDEX IF NOT EXISTS idx_diffs_run ON file_diffs(run_id);
	CREATE INDEX IF NOT EXISTS idx_key_changes_run ON key_changes(run_id);
	CREATE INDEX IF NOT EXISTS idx_notes_run ON notes(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON parse_runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and, for successful runs, its extracted data in a
// single transaction.
func (s *Store) SaveRun(ctx context.Context, run store.Run, data domain.MigrationReportData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parse_runs (run_id, timestamp, report_path, repo_url, title, failure_reason, sections_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.Timestamp.Unix(),
		run.ReportPath,
		run.RepoURL,
		run.Title,
		run.FailureReason,
		data.Stats.SectionsCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	if run.Succeeded() {
		if err := saveReportData(ctx, tx, run.RunID, data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func saveReportData(ctx context.Context, tx *sql.Tx, runID string, data domain.MigrationReportData) error {
	invStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_rows (run_id, position, file, apis_used, summary)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare inventory insert: %w", err)
	}
	defer invStmt.Close()

	for i, row := range data.Inventory {
		if _, err := invStmt.ExecContext(ctx, runID, i, row.File, row.APIsUsed, row.Summary); err != nil {
			return fmt.Errorf("failed to save inventory row: %w", err)
		}
	}

	diffStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_diffs (run_id, position, file, description, diff_content, language)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare diff insert: %w", err)
	}
	defer diffStmt.Close()

	changeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO key_changes (run_id, diff_position, position, change)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare key change insert: %w", err)
	}
	defer changeStmt.Close()

	for i, fd := range data.Diffs {
		if _, err := diffStmt.ExecContext(ctx, runID, i, fd.File, fd.Description, fd.DiffContent, fd.Language); err != nil {
			return fmt.Errorf("failed to save file diff: %w", err)
		}
		for j, change := range fd.KeyChanges {
			if _, err := changeStmt.ExecContext(ctx, runID, i, j, change); err != nil {
				return fmt.Errorf("failed to save key change: %w", err)
			}
		}
	}

	for i, change := range data.KeyChanges {
		if _, err := changeStmt.ExecContext(ctx, runID, -1, i, change); err != nil {
			return fmt.Errorf("failed to save key change: %w", err)
		}
	}

	noteStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notes (run_id, position, note)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare note insert: %w", err)
	}
	defer noteStmt.Close()

	for i, note := range data.Notes {
		if _, err := noteStmt.ExecContext(ctx, runID, i, note); err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, timestamp, report_path, repo_url, title, failure_reason
		FROM parse_runs
		WHERE run_id = ?
	`, runID)
	return scanRun(row)
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun(ctx context.Context) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, timestamp, report_path, repo_url, title, failure_reason
		FROM parse_runs
		ORDER BY timestamp DESC, run_id DESC
		LIMIT 1
	`)
	return scanRun(row)
}

func scanRun(row *sql.Row) (store.Run, error) {
	var run store.Run
	var timestamp int64

	err := row.Scan(
		&run.RunID,
		&timestamp,
		&run.ReportPath,
		&run.RepoURL,
		&run.Title,
		&run.FailureReason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found")
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, timestamp, report_path, repo_url, title, failure_reason
		FROM parse_runs
		ORDER BY timestamp DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.ReportPath,
			&run.RepoURL,
			&run.Title,
			&run.FailureReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetReport reconstructs the extracted data for a run. Hunks, per-file stats
// and count diagnostics are re-derived from the stored diff bodies.
func (s *Store) GetReport(ctx context.Context, runID string) (domain.MigrationReportData, error) {
	var data domain.MigrationReportData

	var sectionsCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT title, sections_count FROM parse_runs WHERE run_id = ?
	`, runID).Scan(&data.Title, &sectionsCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, fmt.Errorf("run not found: %s", runID)
		}
		return data, fmt.Errorf("failed to get run: %w", err)
	}

	if data.Inventory, err = s.inventoryForRun(ctx, runID); err != nil {
		return data, err
	}

	changesByDiff, reportChanges, err := s.keyChangesForRun(ctx, runID)
	if err != nil {
		return data, err
	}
	data.KeyChanges = reportChanges

	if data.Diffs, err = s.diffsForRun(ctx, runID, changesByDiff); err != nil {
		return data, err
	}

	if data.Notes, err = s.notesForRun(ctx, runID); err != nil {
		return data, err
	}

	data.Stats = domain.ComputeStats(data, sectionsCount)
	return data, nil
}

func (s *Store) inventoryForRun(ctx context.Context, runID string) ([]domain.InventoryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file, apis_used, summary
		FROM inventory_rows
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	defer rows.Close()

	var inventory []domain.InventoryRow
	for rows.Next() {
		var r domain.InventoryRow
		if err := rows.Scan(&r.File, &r.APIsUsed, &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		inventory = append(inventory, r)
	}
	return inventory, rows.Err()
}

func (s *Store) diffsForRun(ctx context.Context, runID string, changesByDiff map[int][]string) ([]domain.FileDiff, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, file, description, diff_content, language
		FROM file_diffs
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get diffs: %w", err)
	}
	defer rows.Close()

	var diffs []domain.FileDiff
	for rows.Next() {
		var fd domain.FileDiff
		var position int
		if err := rows.Scan(&position, &fd.File, &fd.Description, &fd.DiffContent, &fd.Language); err != nil {
			return nil, fmt.Errorf("failed to scan diff: %w", err)
		}
		fd.Hunks = diff.Parse(fd.DiffContent)
		fd.Stats = diff.Stats(fd.Hunks)
		fd.Diagnostics = diff.CountMismatches(fd.Hunks)
		fd.KeyChanges = changesByDiff[position]
		diffs = append(diffs, fd)
	}
	return diffs, rows.Err()
}

func (s *Store) keyChangesForRun(ctx context.Context, runID string) (map[int][]string, []string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT diff_position, change
		FROM key_changes
		WHERE run_id = ?
		ORDER BY diff_position ASC, position ASC
	`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get key changes: %w", err)
	}
	defer rows.Close()

	byDiff := make(map[int][]string)
	var reportLevel []string
	for rows.Next() {
		var diffPosition int
		var change string
		if err := rows.Scan(&diffPosition, &change); err != nil {
			return nil, nil, fmt.Errorf("failed to scan key change: %w", err)
		}
		if diffPosition < 0 {
			reportLevel = append(reportLevel, change)
		} else {
			byDiff[diffPosition] = append(byDiff[diffPosition], change)
		}
	}
	return byDiff, reportLevel, rows.Err()
}

func (s *Store) notesForRun(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT note FROM notes WHERE run_id = ? ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
