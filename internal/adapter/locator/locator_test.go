package locator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avermeer/migrep/internal/adapter/repository"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFindReport_NamedReportWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# Migration Report\nlooks like one")
	writeFile(t, dir, "migration-report-20240101.md", "old")
	newest := writeFile(t, dir, "migration-report-20240201.md", "new")
	// Make mtimes deterministic regardless of filesystem resolution.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "migration-report-20240101.md"), old, old))

	loc := New(repository.NewLocal(dir))
	got, err := loc.FindReport()
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(newest), got)
}

func TestFindReport_ContentSniffFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "CHANGELOG.md", "just a changelog")
	writeFile(t, dir, "report.md", "# Something\n## Kafka Usage Inventory\n")

	loc := New(repository.NewLocal(dir))
	got, err := loc.FindReport()
	require.NoError(t, err)
	assert.Equal(t, "report.md", got)
}

func TestFindReport_FirstMarkdownFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "nothing special")
	writeFile(t, dir, "a.md", "also nothing")

	loc := New(repository.NewLocal(dir))
	got, err := loc.FindReport()
	require.NoError(t, err)
	assert.Equal(t, "a.md", got)
}

func TestFindReport_SkipsEmptyAndNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "migration-report.md", "") // empty, invalid
	writeFile(t, dir, "notes.txt", "not markdown")
	writeFile(t, dir, "real.markdown", "## Code Migration Diffs")

	loc := New(repository.NewLocal(dir))
	got, err := loc.FindReport()
	require.NoError(t, err)
	assert.Equal(t, "real.markdown", got)
}

func TestFindReport_NoCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "x")

	loc := New(repository.NewLocal(dir))
	_, err := loc.FindReport()
	assert.Error(t, err)
}

func TestCleanStaleReports(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"migration-report-1.md", "migration-report-2.md", "README.md", "migration-report.json"} {
		writeFile(t, dir, name, "x")
	}

	repo := repository.NewLocal(dir)
	removed, err := New(repo).CleanStaleReports()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"migration-report-1.md", "migration-report-2.md"}, removed)
	assert.True(t, repo.FileExists("README.md"))
	assert.True(t, repo.FileExists("migration-report.json"))
}
