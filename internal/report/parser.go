package report

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/avermeer/migrep/internal/diff"
	"github.com/avermeer/migrep/internal/domain"
)

// ErrNoStructure is returned when the structural pipeline finds nothing to
// work with: no title, no per-file sections, and no inventory rows.
var ErrNoStructure = errors.New("no recognizable report structure")

// Extract runs the regex/structural pipeline over the raw report text and
// assembles the canonical report. It is a pure function of its input and
// safe to call concurrently.
func Extract(raw string) (domain.MigrationReportData, error) {
	content := Normalize(raw)

	title, hasTitle := ExtractTitle(content)
	inventory := ParseInventory(content)
	sections := SplitSections(content)

	if !hasTitle && len(sections) == 0 && len(inventory) == 0 {
		return domain.MigrationReportData{}, ErrNoStructure
	}

	diffs := make([]domain.FileDiff, 0, len(sections))
	var reportChanges [][]string
	for _, section := range sections {
		if section.DiffContent == "" {
			// Prose-only section: counted, but there is no diff to keep.
			continue
		}
		fd := buildFileDiff(section)
		reportChanges = append(reportChanges, fd.KeyChanges)
		diffs = append(diffs, fd)
	}

	data := domain.MigrationReportData{
		Title:      title,
		Inventory:  inventory,
		Diffs:      diffs,
		KeyChanges: MergeDedupe(reportChanges...),
		Notes:      ExtractNotes(content),
	}
	data.Stats = domain.ComputeStats(data, len(sections))
	return data, nil
}

// buildFileDiff turns one section into a FileDiff: summary bullets disguised
// as deletions are relocated first, then the cleaned body is parsed into
// hunks and summed into stats.
func buildFileDiff(section Section) domain.FileDiff {
	cleaned, reclassified := diff.ReclassifySummaries(section.DiffContent)
	keyChanges, description := KeyChanges(section, reclassified)
	hunks := diff.Parse(cleaned)

	return domain.FileDiff{
		File:        section.File,
		Description: description,
		DiffContent: cleaned,
		Language:    LanguageForFile(section.File),
		KeyChanges:  keyChanges,
		Hunks:       hunks,
		Stats:       diff.Stats(hunks),
		Diagnostics: diff.CountMismatches(hunks),
	}
}

// Normalize rewrites all line endings to \n. Every splitter in this package
// assumes normalized input.
func Normalize(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

var languageByExtension = map[string]string{
	".cs":     "csharp",
	".csproj": "xml",
	".go":     "go",
	".py":     "python",
	".js":     "javascript",
	".ts":     "typescript",
	".java":   "java",
	".rb":     "ruby",
	".sql":    "sql",
	".sh":     "bash",
	".yaml":   "yaml",
	".yml":    "yaml",
	".json":   "json",
	".xml":    "xml",
	".md":     "markdown",
	".tf":     "hcl",
}

// LanguageForFile infers a syntax tag from the file extension, defaulting
// to "text".
func LanguageForFile(file string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(file)))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "text"
}
