package report

import (
	"regexp"
	"strings"
)

var (
	keyChangesHeaderRegex = regexp.MustCompile(`(?i)^(?:#+\s*)?\**\s*key\s+changes:?\**\s*$`)
	bulletLineRegex       = regexp.MustCompile(`^\s*[-*]\s+(.+?)\s*$`)
	headingLineRegex      = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	inlineNoteRegex       = regexp.MustCompile(`(?i)^(?:[-*+]\s*)?note:\s*(.+)$`)
)

// KeyChanges finds change bullets for one section. Three candidate locations
// are tried in priority order, first non-empty wins: an explicit "Key
// Changes" header followed by bullets in the description, any bullet list in
// the description, then an explicit header in the text after the diff's
// closing fence. The winning bullets are merged with the reclassified
// summary lines, deduplicated case-insensitively in first-seen order.
// The returned description has an extracted header-and-list region removed.
func KeyChanges(section Section, reclassified []string) ([]string, string) {
	description := section.Description

	bullets, stripped, ok := headedBullets(description)
	if ok {
		description = stripped
	} else if any := allBullets(description); len(any) > 0 {
		bullets = any
	} else if after, _, ok := headedBullets(section.AfterDiff); ok {
		bullets = after
	}

	return MergeDedupe(bullets, reclassified), description
}

// MergeDedupe combines bullet sources, dropping case-insensitive duplicates
// while preserving first-seen order.
func MergeDedupe(sources ...[]string) []string {
	var merged []string
	seen := map[string]bool{}
	for _, source := range sources {
		for _, item := range source {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, item)
		}
	}
	return merged
}

// headedBullets extracts the bullet list that immediately follows a
// "Key Changes" header, returning the text with the header and list removed.
func headedBullets(text string) (bullets []string, stripped string, ok bool) {
	if text == "" {
		return nil, text, false
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !keyChangesHeaderRegex.MatchString(strings.TrimSpace(line)) {
			continue
		}
		end := i + 1
		for end < len(lines) {
			trimmed := strings.TrimSpace(lines[end])
			if trimmed == "" && len(bullets) == 0 {
				// Blank line between the header and the list.
				end++
				continue
			}
			m := bulletLineRegex.FindStringSubmatch(lines[end])
			if m == nil {
				break
			}
			bullets = append(bullets, m[1])
			end++
		}
		if len(bullets) == 0 {
			return nil, text, false
		}
		remainder := append(append([]string{}, lines[:i]...), lines[end:]...)
		return bullets, strings.TrimSpace(strings.Join(remainder, "\n")), true
	}
	return nil, text, false
}

// allBullets collects every bullet line in the text, used when no explicit
// header is present.
func allBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletLineRegex.FindStringSubmatch(line); m != nil {
			bullets = append(bullets, m[1])
		}
	}
	return bullets
}

// ExtractNotes pulls document-level notes: the paragraph under any heading
// whose text mentions "note" or "important", plus inline "Note:" lines.
func ExtractNotes(content string) []string {
	var notes []string
	lines := strings.Split(content, "\n")

	for i := 0; i < len(lines); i++ {
		if m := headingLineRegex.FindStringSubmatch(lines[i]); m != nil && mentionsNotes(m[1]) {
			j := i + 1
			for ; j < len(lines); j++ {
				if headingLineRegex.MatchString(lines[j]) {
					break
				}
				trimmed := strings.TrimSpace(lines[j])
				if trimmed == "" {
					continue
				}
				note := strings.TrimSpace(strings.TrimLeft(trimmed, "-* "))
				if inline := inlineNoteRegex.FindStringSubmatch(note); inline != nil {
					note = strings.TrimSpace(inline[1])
				}
				notes = append(notes, note)
			}
			// The section's lines are consumed; don't rescan them for
			// inline notes.
			i = j - 1
			continue
		}
		if m := inlineNoteRegex.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			notes = append(notes, strings.TrimSpace(m[1]))
		}
	}

	return MergeDedupe(notes)
}

func mentionsNotes(heading string) bool {
	lower := strings.ToLower(heading)
	return strings.Contains(lower, "note") || strings.Contains(lower, "important")
}
