// Package pipeline orchestrates the end-to-end extraction workflow: refresh
// the repository, run the analysis command, locate the report it produced,
// extract the structured data, persist the run, and export renderings.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avermeer/migrep/internal/config"
	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/logging"
	"github.com/avermeer/migrep/internal/store"
	"github.com/avermeer/migrep/internal/usecase/extract"
)

// Cloner keeps a checkout of the repository under analysis current.
type Cloner interface {
	CloneOrUpdate(ctx context.Context, url, dir string) error
}

// AnalysisCommand describes the external analysis invocation.
type AnalysisCommand struct {
	Command string
	Args    []string
	Env     []string
	Dir     string
}

// AnalysisOutcome is the exec envelope of one analysis run.
type AnalysisOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// AnalysisRunner executes the analysis command.
type AnalysisRunner interface {
	Run(ctx context.Context, cmd AnalysisCommand) (AnalysisOutcome, error)
}

// ReportLocator finds the report inside the repository directory and cleans
// up reports from earlier runs.
type ReportLocator interface {
	FindReport() (string, error)
	CleanStaleReports() ([]string, error)
}

// Exporter renders a parsed report to disk and returns the file path.
type Exporter interface {
	Export(ctx context.Context, runID string, data domain.MigrationReportData) (string, error)
}

// Deps captures the collaborators for the pipeline. Cloner, Runner, Store
// and Exporters are optional; operations that need a missing collaborator
// fail with a descriptive error.
type Deps struct {
	Config    config.Config
	Logger    logging.Logger
	Files     extract.FileReader
	Extractor *extract.Orchestrator
	Locator   ReportLocator
	Cloner    Cloner
	Runner    AnalysisRunner
	Store     store.Store
	Exporters map[string]Exporter
	Now       func() time.Time
}

// Service runs the extraction workflow.
type Service struct {
	deps Deps
}

// NewService constructs the pipeline service.
func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// Result is the outcome of a parse or analyze operation.
type Result struct {
	Run  store.Run
	Data domain.MigrationReportData
}

// Parse extracts structured data from the report at reportPath. An empty
// path falls back to the configured report path, then to locator discovery.
// The run is recorded in the store either way; extraction failures are
// returned after being recorded.
func (s *Service) Parse(ctx context.Context, reportPath string) (Result, error) {
	path, err := s.resolveReportPath(reportPath)
	if err != nil {
		return s.recordFailure(ctx, "", err)
	}

	raw, err := s.deps.Files.ReadFile(path)
	if err != nil {
		return s.recordFailure(ctx, path, extract.NewNotFound(err.Error()))
	}

	return s.extractAndRecord(ctx, path, string(raw))
}

// Analyze refreshes the repository checkout, runs the analysis command, and
// parses whatever it produced. The command's stdout is itself a parse
// candidate; when it carries a sentinel block the report file is not needed.
func (s *Service) Analyze(ctx context.Context) (Result, error) {
	cfg := s.deps.Config

	if cfg.Git.RepositoryURL != "" {
		if s.deps.Cloner == nil {
			return Result{}, fmt.Errorf("repository URL configured but no cloner available")
		}
		s.info(ctx, "refreshing repository", map[string]interface{}{
			"url": cfg.Git.RepositoryURL,
			"dir": cfg.Git.RepositoryDir,
		})
		if err := s.deps.Cloner.CloneOrUpdate(ctx, cfg.Git.RepositoryURL, cfg.Git.RepositoryDir); err != nil {
			return Result{}, fmt.Errorf("refresh repository: %w", err)
		}
	}

	if s.deps.Locator != nil {
		removed, err := s.deps.Locator.CleanStaleReports()
		if err != nil {
			return Result{}, err
		}
		if len(removed) > 0 {
			s.info(ctx, "removed stale reports", map[string]interface{}{"count": len(removed)})
		}
	}

	if s.deps.Runner == nil {
		return Result{}, fmt.Errorf("no analysis runner available")
	}

	runCtx := ctx
	if cfg.Analysis.Timeout != "" {
		timeout, err := cfg.Analysis.TimeoutDuration()
		if err != nil {
			return Result{}, err
		}
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcome, err := s.deps.Runner.Run(runCtx, AnalysisCommand{
		Command: cfg.Analysis.Command,
		Args:    cfg.Analysis.Args,
		Env:     cfg.Analysis.Env,
		Dir:     cfg.Git.RepositoryDir,
	})
	if err != nil {
		return Result{}, fmt.Errorf("analysis run: %w", err)
	}
	s.info(ctx, "analysis finished", map[string]interface{}{
		"exitCode": outcome.ExitCode,
		"duration": outcome.Duration.String(),
	})

	if hasSentinel(outcome.Stdout) {
		return s.extractAndRecord(ctx, "", outcome.Stdout)
	}

	return s.Parse(ctx, "")
}

// Export renders a previously recorded run in the given format ("json",
// "markdown" or "both") and returns the written paths.
func (s *Service) Export(ctx context.Context, runID, format string) ([]string, error) {
	if s.deps.Store == nil {
		return nil, fmt.Errorf("exporting a recorded run requires the store to be enabled")
	}

	run, err := s.resolveRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !run.Succeeded() {
		return nil, fmt.Errorf("run %s failed (%s); nothing to export", run.RunID, run.FailureReason)
	}

	data, err := s.deps.Store.GetReport(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	return s.ExportData(ctx, run.RunID, data, format)
}

// ExportData renders in-memory report data without touching the store.
func (s *Service) ExportData(ctx context.Context, runID string, data domain.MigrationReportData, format string) ([]string, error) {
	formats, err := exportFormats(format)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, f := range formats {
		exporter, ok := s.deps.Exporters[f]
		if !ok {
			return nil, fmt.Errorf("no exporter registered for format %q", f)
		}
		path, err := exporter.Export(ctx, runID, data)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Runs lists the most recent recorded runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if s.deps.Store == nil {
		return nil, fmt.Errorf("listing runs requires the store to be enabled")
	}
	return s.deps.Store.ListRuns(ctx, limit)
}

func (s *Service) extractAndRecord(ctx context.Context, path, raw string) (Result, error) {
	sidecar := s.deps.Config.Report.SidecarPath
	if sidecar == "" && path != "" {
		sidecar = extract.SidecarPath(path)
	}

	data, err := s.deps.Extractor.Extract(ctx, extract.Request{
		ReportPath:  path,
		RawText:     raw,
		SidecarPath: sidecar,
	})
	if err != nil {
		return s.recordFailure(ctx, path, err)
	}

	run := store.Run{
		RunID:      store.GenerateRunID(s.deps.Now(), path),
		Timestamp:  s.deps.Now(),
		ReportPath: path,
		RepoURL:    s.deps.Config.Git.RepositoryURL,
		Title:      data.Title,
	}
	if err := s.saveRun(ctx, run, data); err != nil {
		return Result{}, err
	}

	return Result{Run: run, Data: data}, nil
}

func (s *Service) recordFailure(ctx context.Context, path string, cause error) (Result, error) {
	run := store.Run{
		RunID:         store.GenerateRunID(s.deps.Now(), path),
		Timestamp:     s.deps.Now(),
		ReportPath:    path,
		RepoURL:       s.deps.Config.Git.RepositoryURL,
		FailureReason: failureCode(cause),
	}
	if err := s.saveRun(ctx, run, domain.MigrationReportData{}); err != nil {
		s.warn(ctx, "failed to record failed run", map[string]interface{}{"error": err.Error()})
	}
	return Result{Run: run}, cause
}

func (s *Service) saveRun(ctx context.Context, run store.Run, data domain.MigrationReportData) error {
	if s.deps.Store == nil {
		return nil
	}
	if err := s.deps.Store.SaveRun(ctx, run, data); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *Service) resolveReportPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if s.deps.Config.Report.Path != "" {
		return s.deps.Config.Report.Path, nil
	}
	if s.deps.Locator == nil {
		return "", extract.NewNotFound("no report path given and no locator available")
	}
	path, err := s.deps.Locator.FindReport()
	if err != nil {
		return "", extract.NewNotFound(err.Error())
	}
	return path, nil
}

func (s *Service) resolveRun(ctx context.Context, runID string) (store.Run, error) {
	if runID == "" {
		return s.deps.Store.LatestRun(ctx)
	}
	return s.deps.Store.GetRun(ctx, runID)
}

func (s *Service) info(ctx context.Context, message string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (s *Service) warn(ctx context.Context, message string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.LogWarning(ctx, message, fields)
	}
}

// failureCode maps extraction failures onto the short codes recorded with a
// run. Unexpected errors are recorded verbatim.
func failureCode(err error) string {
	var failure *extract.Failure
	if errors.As(err, &failure) {
		switch failure.Reason {
		case extract.ReasonNotFound:
			return "not_found"
		case extract.ReasonEmpty:
			return "empty"
		case extract.ReasonUnparseable:
			return "unparseable"
		}
	}
	return err.Error()
}

func exportFormats(format string) ([]string, error) {
	switch format {
	case "json", "markdown":
		return []string{format}, nil
	case "both":
		return []string{"json", "markdown"}, nil
	default:
		return nil, fmt.Errorf("invalid export format %q (want json, markdown or both)", format)
	}
}

func hasSentinel(text string) bool {
	begin := strings.Index(text, extract.SentinelBegin)
	if begin < 0 {
		return false
	}
	return strings.Contains(text[begin+len(extract.SentinelBegin):], extract.SentinelEnd)
}
