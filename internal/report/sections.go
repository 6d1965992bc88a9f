package report

import (
	"regexp"
	"strings"
)

// Section is one per-file block of the report: the heading, the prose before
// the diff fence, the fenced diff body, and whatever text trails the closing
// fence (summaries are sometimes placed there instead of before the diff).
type Section struct {
	File        string
	Description string
	DiffContent string
	AfterDiff   string
}

const openingFence = "```diff"

var (
	fileHeadingRegex  = regexp.MustCompile(`(?m)^###\s+`)
	diffsHeadingRegex = regexp.MustCompile(`(?mi)^##[^#\n]*diffs?\b.*$`)
	nextSectionRegex  = regexp.MustCompile(`(?m)^##?\s`)
)

// SplitSections breaks the raw report into per-file sections. It prefers the
// "Code Migration Diffs" region when one exists and falls back to the whole
// document otherwise, staying lenient with reports that drop the outer
// heading.
func SplitSections(content string) []Section {
	region := diffsRegion(content)

	chunks := fileHeadingRegex.Split(region, -1)
	if len(chunks) < 2 {
		return nil
	}

	sections := make([]Section, 0, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		name, body, found := strings.Cut(chunk, "\n")
		if !found {
			body = ""
		}
		name = strings.Trim(strings.TrimSpace(name), "`")
		if name == "" {
			continue
		}
		section := splitFences(body)
		section.File = name
		sections = append(sections, section)
	}
	return sections
}

// ExtractTitle returns the first top-level heading, or a fixed fallback when
// the generator dropped it.
func ExtractTitle(content string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:]), true
		}
	}
	return "Unknown Report", false
}

// diffsRegion isolates the block under the diffs heading, bounded by the
// next same-or-higher-level heading.
func diffsRegion(content string) string {
	loc := diffsHeadingRegex.FindStringIndex(content)
	if loc == nil {
		return content
	}
	rest := content[loc[1]:]
	if end := nextSectionRegex.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rest
}

// splitFences locates the diff fence inside a section body. The upstream
// generator is known to duplicate fence markers, so when several opening
// fences occur the LAST one is treated as the true diff start and everything
// before it, stale fences included, stays in the description.
func splitFences(body string) Section {
	lines := strings.Split(body, "\n")

	openIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), openingFence) {
			openIdx = i
		}
	}
	if openIdx < 0 {
		return Section{Description: strings.TrimSpace(body)}
	}

	closeIdx := len(lines)
	for i := openIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			closeIdx = i
			break
		}
	}

	section := Section{
		Description: strings.TrimSpace(strings.Join(lines[:openIdx], "\n")),
		DiffContent: strings.Trim(strings.Join(lines[openIdx+1:min(closeIdx, len(lines))], "\n"), "\n"),
	}
	if closeIdx+1 < len(lines) {
		section.AfterDiff = strings.TrimSpace(strings.Join(lines[closeIdx+1:], "\n"))
	}
	return section
}
