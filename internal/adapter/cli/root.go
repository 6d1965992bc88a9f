// Package cli wires the cobra command tree around the extraction pipeline.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/store"
	"github.com/avermeer/migrep/internal/usecase/pipeline"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Pipeline defines the dependency required to run the commands.
type Pipeline interface {
	Parse(ctx context.Context, reportPath string) (pipeline.Result, error)
	Analyze(ctx context.Context) (pipeline.Result, error)
	Export(ctx context.Context, runID, format string) ([]string, error)
	ExportData(ctx context.Context, runID string, data domain.MigrationReportData, format string) ([]string, error)
	Runs(ctx context.Context, limit int) ([]store.Run, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Pipeline      Pipeline
	Args          Arguments
	DefaultFormat string
	Version       string
	// IsTerminal reports whether stdout is a terminal; when nil the real
	// file descriptor is probed.
	IsTerminal func() bool
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	if deps.IsTerminal == nil {
		deps.IsTerminal = func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		}
	}
	if deps.DefaultFormat == "" {
		deps.DefaultFormat = "json"
	}

	root := &cobra.Command{
		Use:   "migrep",
		Short: "Extract structured data from migration reports",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(parseCommand(deps))
	root.AddCommand(analyzeCommand(deps))
	root.AddCommand(exportCommand(deps))
	root.AddCommand(runsCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func parseCommand(deps Dependencies) *cobra.Command {
	var exportFormat string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [report]",
		Short: "Parse a migration report into structured data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath := ""
			if len(args) > 0 {
				reportPath = args[0]
			}

			result, err := deps.Pipeline.Parse(cmd.Context(), reportPath)
			if err != nil {
				return err
			}

			if exportFormat != "" {
				paths, err := deps.Pipeline.ExportData(cmd.Context(), result.Run.RunID, result.Data, exportFormat)
				if err != nil {
					return err
				}
				for _, p := range paths {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", p)
				}
			}

			return printResult(cmd, result, asJSON || !deps.IsTerminal())
		},
	}

	cmd.Flags().StringVar(&exportFormat, "export", "", "Also export the parsed report (json, markdown or both)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full parsed data as JSON instead of a summary")

	return cmd
}

func analyzeCommand(deps Dependencies) *cobra.Command {
	var exportFormat string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the configured analysis command and parse its report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := deps.Pipeline.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if exportFormat != "" {
				paths, err := deps.Pipeline.ExportData(cmd.Context(), result.Run.RunID, result.Data, exportFormat)
				if err != nil {
					return err
				}
				for _, p := range paths {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", p)
				}
			}

			return printResult(cmd, result, asJSON || !deps.IsTerminal())
		},
	}

	cmd.Flags().StringVar(&exportFormat, "export", "", "Also export the parsed report (json, markdown or both)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full parsed data as JSON instead of a summary")

	return cmd
}

func exportCommand(deps Dependencies) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Export a recorded run (latest when no ID is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) > 0 {
				runID = args[0]
			}

			paths, err := deps.Pipeline.Export(cmd.Context(), runID, format)
			if err != nil {
				return err
			}
			for _, p := range paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", deps.DefaultFormat, "Export format (json, markdown or both)")

	return cmd
}

func runsCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := deps.Pipeline.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			for _, run := range runs {
				status := "ok"
				if !run.Succeeded() {
					status = run.FailureReason
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-12s  %s\n",
					run.RunID,
					run.Timestamp.UTC().Format("2006-01-02 15:04:05"),
					status,
					run.ReportPath,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")

	return cmd
}

// printResult writes either the full parsed data as JSON (for pipes and
// --json) or a short human summary.
func printResult(cmd *cobra.Command, result pipeline.Result, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result.Data)
	}

	_, _ = fmt.Fprintf(out, "run:    %s\n", result.Run.RunID)
	_, _ = fmt.Fprintf(out, "title:  %s\n", result.Data.Title)
	if result.Run.ReportPath != "" {
		_, _ = fmt.Fprintf(out, "report: %s\n", result.Run.ReportPath)
	}
	_, _ = fmt.Fprintf(out, "inventory rows: %d\n", result.Data.Stats.TotalFilesWithInventoryEntry)
	_, _ = fmt.Fprintf(out, "file diffs:     %d\n", result.Data.Stats.TotalFilesWithDiff)
	_, _ = fmt.Fprintf(out, "notes:          %d\n", result.Data.Stats.NotesCount)
	return nil
}
