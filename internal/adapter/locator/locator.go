// Package locator finds the migration report to parse inside a working
// directory. Analysis runs drop reports with generated names, so the caller
// usually does not know the exact filename ahead of time.
package locator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avermeer/migrep/internal/adapter/repository"
)

// reportNameToken marks files produced by the analysis run.
const reportNameToken = "migration-report"

// reportLikeTokens are heading fragments that suggest a markdown file is a
// migration report rather than, say, a README.
var reportLikeTokens = []string{"migration report", "usage inventory", "migration diffs"}

// Locator resolves report and sidecar paths within a repository root.
type Locator struct {
	repo *repository.Local
}

// New creates a Locator over the given repository.
func New(repo *repository.Local) *Locator {
	return &Locator{repo: repo}
}

// FindReport resolves the report to parse, in order of preference:
//
//  1. the newest markdown file whose name contains "migration-report"
//  2. a markdown file at the root whose content looks like a report
//  3. the first markdown file at the root, by name
//
// Only valid candidates count: the file must exist, be a regular file, and
// be non-empty.
func (l *Locator) FindReport() (string, error) {
	entries, err := l.repo.List(".")
	if err != nil {
		return "", fmt.Errorf("scanning for report: %w", err)
	}

	var markdown []repository.Entry
	for _, e := range entries {
		if !isMarkdown(e.Path) || e.Size == 0 {
			continue
		}
		markdown = append(markdown, e)
	}
	if len(markdown) == 0 {
		return "", fmt.Errorf("no markdown report found under %s", l.repo.Root())
	}

	// Newest named report wins.
	var named []repository.Entry
	for _, e := range markdown {
		if strings.Contains(strings.ToLower(filepath.Base(e.Path)), reportNameToken) {
			named = append(named, e)
		}
	}
	if len(named) > 0 {
		sort.Slice(named, func(i, j int) bool {
			return named[i].ModTime.After(named[j].ModTime)
		})
		return named[0].Path, nil
	}

	// Fall back to content sniffing.
	sort.Slice(markdown, func(i, j int) bool {
		return markdown[i].Path < markdown[j].Path
	})
	for _, e := range markdown {
		data, err := l.repo.ReadFile(e.Path)
		if err != nil {
			continue
		}
		if looksLikeReport(string(data)) {
			return e.Path, nil
		}
	}

	return markdown[0].Path, nil
}

// CleanStaleReports removes generated report files left by earlier analysis
// runs so FindReport cannot pick up an outdated one. It returns the paths it
// removed.
func (l *Locator) CleanStaleReports() ([]string, error) {
	entries, err := l.repo.List(".")
	if err != nil {
		return nil, fmt.Errorf("scanning for stale reports: %w", err)
	}

	var removed []string
	for _, e := range entries {
		matched, err := filepath.Match(reportNameToken+"-*.md", filepath.Base(e.Path))
		if err != nil || !matched {
			continue
		}
		if err := l.repo.Remove(e.Path); err != nil {
			return removed, fmt.Errorf("removing stale report %s: %w", e.Path, err)
		}
		removed = append(removed, e.Path)
	}
	return removed, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func looksLikeReport(content string) bool {
	lower := strings.ToLower(content)
	for _, token := range reportLikeTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
