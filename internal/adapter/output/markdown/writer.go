// Package markdown re-renders parsed report data as a normalized markdown
// document. The output is regenerated from the typed data, so formatting
// quirks of the source report do not survive the round trip.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/avermeer/migrep/internal/domain"
)

type clock func() string

// Artifact describes one render request.
type Artifact struct {
	OutputDir string
	RunID     string
	Data      domain.MigrationReportData
}

// Writer renders parsed reports into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown rendering to disk and returns the file path.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := artifact.RunID
	if name == "" {
		name = w.now()
	}
	path := filepath.Join(artifact.OutputDir, fmt.Sprintf("report-%s.md", sanitise(name)))

	if err := os.WriteFile(path, []byte(Render(artifact.Data)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

// Render builds the markdown document for the parsed report.
func Render(data domain.MigrationReportData) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	title := data.Title
	if title == "" {
		title = "Migration Report"
	}
	builder.WriteString("# " + title + "\n\n")

	builder.WriteString("## Summary\n\n")
	builder.WriteString(fmt.Sprintf("- Files in inventory: %d\n", data.Stats.TotalFilesWithInventoryEntry))
	builder.WriteString(fmt.Sprintf("- Files with diffs: %d\n", data.Stats.TotalFilesWithDiff))
	builder.WriteString(fmt.Sprintf("- Notes: %d\n\n", data.Stats.NotesCount))

	if len(data.Inventory) > 0 {
		builder.WriteString("## Usage Inventory\n\n")
		builder.WriteString("| File | APIs Used | Summary |\n")
		builder.WriteString("|------|-----------|----------|\n")
		for _, row := range data.Inventory {
			builder.WriteString(fmt.Sprintf("| %s | %s | %s |\n", row.File, row.APIsUsed, row.Summary))
		}
		builder.WriteString("\n")
	}

	if len(data.Diffs) > 0 {
		builder.WriteString("## Code Migration Diffs\n\n")
		for _, fd := range data.Diffs {
			builder.WriteString("### " + fd.File + "\n\n")
			builder.WriteString(fmt.Sprintf("%s (+%d/-%d)\n\n",
				caser.String(fd.Language), fd.Stats.Additions, fd.Stats.Deletions))
			if fd.Description != "" {
				builder.WriteString(fd.Description + "\n\n")
			}
			if len(fd.KeyChanges) > 0 {
				builder.WriteString("**Key Changes:**\n")
				for _, change := range fd.KeyChanges {
					builder.WriteString("- " + change + "\n")
				}
				builder.WriteString("\n")
			}
			if fd.DiffContent != "" {
				builder.WriteString("```diff\n")
				builder.WriteString(fd.DiffContent)
				builder.WriteString("\n```\n\n")
			}
		}
	}

	if len(data.Notes) > 0 {
		builder.WriteString("## Important Notes\n\n")
		for _, note := range data.Notes {
			builder.WriteString("- " + note + "\n")
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
