package json

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avermeer/migrep/internal/domain"
)

func sampleData() domain.MigrationReportData {
	data := domain.MigrationReportData{
		Title:     "Migration Report",
		Inventory: []domain.InventoryRow{{File: "a.go", APIsUsed: "Producer", Summary: "Sends"}},
		Diffs: []domain.FileDiff{{
			File:        "a.go",
			DiffContent: "+added",
			Language:    "go",
			Stats:       domain.DiffStats{Additions: 1, TotalChanges: 1},
		}},
		Notes: []string{"note"},
	}
	data.Stats = domain.ComputeStats(data, 1)
	return data
}

func TestWrite_CreatesFileNamedAfterRun(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(func() string { return "20260826T100000Z" })

	path, err := writer.Write(context.Background(), Artifact{
		OutputDir: filepath.Join(dir, "exports"),
		RunID:     "run-1",
		Data:      sampleData(),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "report-run-1.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domain.MigrationReportData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Migration Report", decoded.Title)
	assert.Len(t, decoded.Inventory, 1)
	assert.Equal(t, 1, decoded.Stats.TotalFilesWithDiff)
}

func TestWrite_FallsBackToTimestamp(t *testing.T) {
	dir := t.TempDir()
	writer := NewWriter(func() string { return "ts" })

	path, err := writer.Write(context.Background(), Artifact{OutputDir: dir, Data: sampleData()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-ts.json"), path)
}
