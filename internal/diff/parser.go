package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/avermeer/migrep/internal/domain"
)

// SyntheticHeader is the header attached to the fallback hunk built for
// diffs that contain change lines but no recognizable @@ header.
const SyntheticHeader = "@@ File changes @@"

var hunkHeaderRegex = regexp.MustCompile(`^@@\s+-(\d+)(?:,(\d+))?\s+\+(\d+)(?:,(\d+))?\s*@@(.*)$`)

// parseState carries the fold accumulator while walking diff lines:
// the running old/new line pointers, the hunk being filled, and the
// hunks already closed.
type parseState struct {
	oldPtr  int
	newPtr  int
	current *domain.Hunk
	closed  []domain.Hunk
}

func (s *parseState) open(h domain.Hunk) {
	s.flush()
	s.oldPtr = h.OldStart
	s.newPtr = h.NewStart
	s.current = &h
}

func (s *parseState) flush() {
	if s.current != nil {
		s.closed = append(s.closed, *s.current)
		s.current = nil
	}
}

// append classifies one body line and advances the pointers. The pointers
// only ever increment, so overshooting a hunk's declared counts is harmless.
func (s *parseState) append(line string) {
	if s.current == nil {
		return
	}
	var dl domain.DiffLine
	switch {
	case strings.HasPrefix(line, "+"):
		dl = domain.DiffLine{Kind: domain.LineAddition, Content: line[1:], NewLine: domain.IntPtr(s.newPtr)}
		s.newPtr++
	case strings.HasPrefix(line, "-"):
		dl = domain.DiffLine{Kind: domain.LineDeletion, Content: line[1:], OldLine: domain.IntPtr(s.oldPtr)}
		s.oldPtr++
	case strings.HasPrefix(line, " "):
		dl = domain.DiffLine{
			Kind:    domain.LineContext,
			Content: line[1:],
			OldLine: domain.IntPtr(s.oldPtr),
			NewLine: domain.IntPtr(s.newPtr),
		}
		s.oldPtr++
		s.newPtr++
	case strings.HasPrefix(line, `\`):
		dl = domain.DiffLine{Kind: domain.LineMarker, Content: strings.TrimSpace(line[1:])}
	default:
		// Tolerate malformed input: anything else counts as context.
		dl = domain.DiffLine{
			Kind:    domain.LineContext,
			Content: line,
			OldLine: domain.IntPtr(s.oldPtr),
			NewLine: domain.IntPtr(s.newPtr),
		}
		s.oldPtr++
		s.newPtr++
	}
	s.current.Lines = append(s.current.Lines, dl)
}

// Parse walks a diff body and returns its hunks in order. File-header lines
// and fence-token lines are skipped in every state. When no hunk header is
// ever recognized but the body still contains +/- change lines, the whole
// body is replayed into a single synthetic hunk so malformed diffs are not
// silently dropped.
func Parse(content string) []domain.Hunk {
	lines := splitLines(content)
	state := parseState{}

	for _, line := range lines {
		if skipLine(line) {
			continue
		}
		if m := hunkHeaderRegex.FindStringSubmatch(line); m != nil {
			state.open(hunkFromHeader(line, m))
			continue
		}
		if state.current == nil {
			// Preamble: nothing recognized as a hunk yet.
			continue
		}
		if line == "" {
			continue
		}
		state.append(line)
	}
	state.flush()

	if len(state.closed) == 0 && hasChangeLines(lines) {
		return []domain.Hunk{syntheticHunk(lines)}
	}
	return state.closed
}

// Stats sums the classified lines across hunks into file-level counts.
// Re-summing is idempotent: the result depends only on the hunk lines.
func Stats(hunks []domain.Hunk) domain.DiffStats {
	var stats domain.DiffStats
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case domain.LineAddition:
				stats.Additions++
			case domain.LineDeletion:
				stats.Deletions++
			case domain.LineContext:
				stats.Context++
			}
		}
	}
	stats.TotalChanges = stats.Additions + stats.Deletions
	return stats
}

// CountMismatches reports hunks whose declared counts disagree with the
// lines that actually followed. The mismatch is informational only; the
// parser never rejects a hunk for it.
func CountMismatches(hunks []domain.Hunk) []string {
	var diags []string
	for i, h := range hunks {
		if h.Header == SyntheticHeader {
			continue
		}
		oldSeen, newSeen := 0, 0
		for _, l := range h.Lines {
			switch l.Kind {
			case domain.LineContext:
				oldSeen++
				newSeen++
			case domain.LineDeletion:
				oldSeen++
			case domain.LineAddition:
				newSeen++
			}
		}
		if oldSeen != h.OldCount {
			diags = append(diags, fmt.Sprintf("hunk %d: old count mismatch (declared %d, saw %d)", i+1, h.OldCount, oldSeen))
		}
		if newSeen != h.NewCount {
			diags = append(diags, fmt.Sprintf("hunk %d: new count mismatch (declared %d, saw %d)", i+1, h.NewCount, newSeen))
		}
	}
	return diags
}

func hunkFromHeader(line string, m []string) domain.Hunk {
	return domain.Hunk{
		Header:   line,
		OldStart: atoiDefault(m[1], 1),
		OldCount: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 1),
		NewCount: atoiDefault(m[4], 1),
	}
}

// syntheticHunk replays all change and context lines into one hunk with
// independent pointers starting at 1.
func syntheticHunk(lines []string) domain.Hunk {
	state := parseState{}
	state.open(domain.Hunk{
		Header:   SyntheticHeader,
		OldStart: 1,
		NewStart: 1,
	})
	for _, line := range lines {
		if skipLine(line) || line == "" {
			continue
		}
		state.append(line)
	}
	state.flush()
	return state.closed[0]
}

func hasChangeLines(lines []string) bool {
	for _, line := range lines {
		if skipLine(line) {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			return true
		}
	}
	return false
}

// skipLine filters git file headers and stray fence tokens, which carry no
// hunk content in any state.
func skipLine(line string) bool {
	return strings.HasPrefix(line, "diff --git") ||
		strings.HasPrefix(line, "index ") ||
		strings.HasPrefix(line, "---") ||
		strings.HasPrefix(line, "+++") ||
		isFenceToken(strings.TrimRight(line, " \t"))
}

func isFenceToken(line string) bool {
	return line == "```" || strings.HasPrefix(line, "```diff")
}

func splitLines(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
