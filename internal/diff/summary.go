package diff

import (
	"regexp"
	"strings"
)

// The upstream generator sometimes prepends human-readable bullet summaries
// formatted as diff deletions ("- Replaced X with Y"). Left in place they
// would be counted as code deletions and pollute the rendered diff, so any
// preamble deletion whose remainder leads with one of these verbs is
// relocated into the file's key changes instead.
var summaryVerbRegex = regexp.MustCompile(`(?i)^(replaced|added|implemented|updated|removed|changed|fixed|created|modified|introduced|migrated|configured|refactored|used|simplified|kept)\b`)

// ReclassifySummaries scans the preamble of a diff body (the lines before
// the first recognized hunk header) for deletion-shaped summary bullets,
// removes them from the body, and returns their trimmed text. Duplicates are
// dropped case-insensitively, preserving first-seen order.
//
// A body with no hunk or file headers at all has no preamble: its minus
// lines are real deletions destined for the synthetic hunk, verb-led or
// not, so such bodies pass through untouched.
func ReclassifySummaries(content string) (string, []string) {
	lines := splitLines(content)
	firstHunk := len(lines)
	hasStructure := false
	for i, line := range lines {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			hasStructure = true
		}
		if hunkHeaderRegex.MatchString(line) {
			hasStructure = true
			firstHunk = i
			break
		}
	}
	if !hasStructure {
		return content, nil
	}

	var kept []string
	var bullets []string
	seen := map[string]bool{}

	for i, line := range lines {
		if i < firstHunk && isSummaryDeletion(line) {
			text := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			key := strings.ToLower(text)
			if !seen[key] {
				seen[key] = true
				bullets = append(bullets, text)
			}
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n"), bullets
}

func isSummaryDeletion(line string) bool {
	if !strings.HasPrefix(line, "-") || strings.HasPrefix(line, "---") {
		return false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "-"))
	return summaryVerbRegex.MatchString(rest)
}
