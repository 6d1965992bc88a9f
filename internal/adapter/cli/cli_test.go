package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/store"
	"github.com/avermeer/migrep/internal/usecase/pipeline"
)

type stubPipeline struct {
	parsePath  string
	result     pipeline.Result
	exported   []string
	exportErr  error
	runs       []store.Run
	analyzeErr error
}

func (s *stubPipeline) Parse(ctx context.Context, reportPath string) (pipeline.Result, error) {
	s.parsePath = reportPath
	return s.result, nil
}

func (s *stubPipeline) Analyze(ctx context.Context) (pipeline.Result, error) {
	return s.result, s.analyzeErr
}

func (s *stubPipeline) Export(ctx context.Context, runID, format string) ([]string, error) {
	return s.exported, s.exportErr
}

func (s *stubPipeline) ExportData(ctx context.Context, runID string, data domain.MigrationReportData, format string) ([]string, error) {
	return s.exported, s.exportErr
}

func (s *stubPipeline) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	return s.runs, nil
}

func sampleResult() pipeline.Result {
	data := domain.MigrationReportData{
		Title:     "Migration Report",
		Inventory: []domain.InventoryRow{{File: "a.go"}},
		Notes:     []string{"note"},
	}
	data.Stats = domain.ComputeStats(data, 1)
	return pipeline.Result{
		Run: store.Run{
			RunID:      "run-20260826T120000Z-abc123",
			Timestamp:  time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
			ReportPath: "report.md",
			Title:      "Migration Report",
		},
		Data: data,
	}
}

func execute(t *testing.T, deps Dependencies, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	deps.Args = Arguments{OutWriter: &out, ErrWriter: &errOut}
	if deps.IsTerminal == nil {
		deps.IsTerminal = func() bool { return true }
	}
	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestParseCommand_Summary(t *testing.T) {
	stub := &stubPipeline{result: sampleResult()}

	out, _, err := execute(t, Dependencies{Pipeline: stub}, "parse", "report.md")
	require.NoError(t, err)

	assert.Equal(t, "report.md", stub.parsePath)
	assert.Contains(t, out, "run:    run-20260826T120000Z-abc123")
	assert.Contains(t, out, "title:  Migration Report")
	assert.Contains(t, out, "inventory rows: 1")
}

func TestParseCommand_JSONWhenPiped(t *testing.T) {
	stub := &stubPipeline{result: sampleResult()}

	out, _, err := execute(t, Dependencies{
		Pipeline:   stub,
		IsTerminal: func() bool { return false },
	}, "parse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{"), "non-TTY output is JSON: %s", out)
	assert.Contains(t, out, `"title": "Migration Report"`)
}

func TestParseCommand_ExportFlag(t *testing.T) {
	stub := &stubPipeline{result: sampleResult(), exported: []string{"out/report-run-1.json"}}

	_, errOut, err := execute(t, Dependencies{Pipeline: stub}, "parse", "report.md", "--export", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "wrote out/report-run-1.json")
}

func TestAnalyzeCommand_Error(t *testing.T) {
	stub := &stubPipeline{analyzeErr: errors.New("analysis run: boom")}

	_, _, err := execute(t, Dependencies{Pipeline: stub}, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExportCommand_PrintsPaths(t *testing.T) {
	stub := &stubPipeline{exported: []string{"out/a.json", "out/a.md"}}

	out, _, err := execute(t, Dependencies{Pipeline: stub}, "export", "run-1", "--format", "both")
	require.NoError(t, err)
	assert.Equal(t, "out/a.json\nout/a.md\n", out)
}

func TestRunsCommand(t *testing.T) {
	stub := &stubPipeline{runs: []store.Run{
		{RunID: "run-b", Timestamp: time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC), ReportPath: "b.md"},
		{RunID: "run-a", Timestamp: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), ReportPath: "a.md", FailureReason: "empty"},
	}}

	out, _, err := execute(t, Dependencies{Pipeline: stub}, "runs")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run-b")
	assert.Contains(t, lines[0], "ok")
	assert.Contains(t, lines[1], "empty")
}

func TestRunsCommand_Empty(t *testing.T) {
	stub := &stubPipeline{}

	out, _, err := execute(t, Dependencies{Pipeline: stub}, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, Dependencies{Pipeline: &stubPipeline{}, Version: "v1.2.3"}, "--version")
	assert.ErrorIs(t, err, ErrVersionRequested)
	assert.Contains(t, out, "v1.2.3")
}

func TestRootShowsHelp(t *testing.T) {
	out, _, err := execute(t, Dependencies{Pipeline: &stubPipeline{}})
	require.NoError(t, err)
	assert.Contains(t, out, "Extract structured data from migration reports")
}
