package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/avermeer/migrep/internal/adapter/analyzer"
	"github.com/avermeer/migrep/internal/adapter/cli"
	"github.com/avermeer/migrep/internal/adapter/git"
	"github.com/avermeer/migrep/internal/adapter/locator"
	jsonout "github.com/avermeer/migrep/internal/adapter/output/json"
	"github.com/avermeer/migrep/internal/adapter/output/markdown"
	"github.com/avermeer/migrep/internal/adapter/repository"
	"github.com/avermeer/migrep/internal/adapter/store/sqlite"
	"github.com/avermeer/migrep/internal/config"
	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/logging"
	"github.com/avermeer/migrep/internal/store"
	"github.com/avermeer/migrep/internal/usecase/extract"
	"github.com/avermeer/migrep/internal/usecase/pipeline"
	"github.com/avermeer/migrep/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		FileName:  "migrep",
		EnvPrefix: "MIGREP",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	logger := logging.NewDefaultLogger(
		logging.ParseLevel(cfg.Logging.Level),
		logging.ParseFormat(cfg.Logging.Format),
	)

	repo := repository.NewLocal(repoDir)
	reportLocator := locator.New(repo)
	extractor := extract.NewOrchestrator(extract.Deps{Files: repo, Logger: logger})

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	exporters := map[string]pipeline.Exporter{
		"json":     &jsonExporter{writer: jsonout.NewWriter(nowFunc), dir: cfg.Output.Directory},
		"markdown": &markdownExporter{writer: markdown.NewWriter(nowFunc), dir: cfg.Output.Directory},
	}

	var runStore store.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = sqliteStore
				defer runStore.Close()
			}
		}
	}

	service := pipeline.NewService(pipeline.Deps{
		Config:    cfg,
		Logger:    logger,
		Files:     repo,
		Extractor: extractor,
		Locator:   reportLocator,
		Cloner:    git.NewEngine(),
		Runner:    &analysisRunner{runner: analyzer.NewRunner()},
		Store:     runStore,
		Exporters: exporters,
	})

	root := cli.NewRootCommand(cli.Dependencies{
		Pipeline:      service,
		DefaultFormat: cfg.Output.Format,
		Version:       version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// analysisRunner adapts the analyzer adapter to the pipeline port.
type analysisRunner struct {
	runner *analyzer.Runner
}

func (a *analysisRunner) Run(ctx context.Context, cmd pipeline.AnalysisCommand) (pipeline.AnalysisOutcome, error) {
	result, err := a.runner.Run(ctx, analyzer.Spec{
		Command: cmd.Command,
		Args:    cmd.Args,
		Env:     cmd.Env,
		Dir:     cmd.Dir,
	})
	if err != nil {
		return pipeline.AnalysisOutcome{}, err
	}
	return pipeline.AnalysisOutcome{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Duration: result.Duration,
	}, nil
}

// jsonExporter adapts the JSON writer to the pipeline port.
type jsonExporter struct {
	writer *jsonout.Writer
	dir    string
}

func (e *jsonExporter) Export(ctx context.Context, runID string, data domain.MigrationReportData) (string, error) {
	return e.writer.Write(ctx, jsonout.Artifact{OutputDir: e.dir, RunID: runID, Data: data})
}

// markdownExporter adapts the Markdown writer to the pipeline port.
type markdownExporter struct {
	writer *markdown.Writer
	dir    string
}

func (e *markdownExporter) Export(ctx context.Context, runID string, data domain.MigrationReportData) (string, error) {
	return e.writer.Write(ctx, markdown.Artifact{OutputDir: e.dir, RunID: runID, Data: data})
}

// Compile-time interface checks.
var (
	_ pipeline.Cloner         = (*git.Engine)(nil)
	_ pipeline.ReportLocator  = (*locator.Locator)(nil)
	_ pipeline.AnalysisRunner = (*analysisRunner)(nil)
	_ extract.FileReader      = (*repository.Local)(nil)
	_ cli.Pipeline            = (*pipeline.Service)(nil)
)
