package domain

// LineKind represents the type of a single line in a diff hunk.
type LineKind int

const (
	// LineContext represents an unchanged context line (starts with ' ').
	LineContext LineKind = iota
	// LineAddition represents an added line (starts with '+').
	LineAddition
	// LineDeletion represents a deleted line (starts with '-').
	LineDeletion
	// LineMarker represents a "\ No newline at end of file" marker.
	LineMarker
)

// String returns a human-readable name for the line kind.
func (k LineKind) String() string {
	switch k {
	case LineContext:
		return "context"
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	case LineMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// DiffLine is a single classified line in a hunk.
// OldLine is set for context and deletion lines, NewLine for context and
// addition lines. Marker lines carry neither.
type DiffLine struct {
	Kind    LineKind
	Content string // line content without the leading +/-/space sigil
	OldLine *int
	NewLine *int
}

// Hunk is one contiguous run of a unified diff. Header preserves the
// original @@ line verbatim for traceability.
type Hunk struct {
	Header   string
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []DiffLine
}

// DiffStats aggregates line counts across all hunks of one file diff.
type DiffStats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Context      int `json:"context"`
	TotalChanges int `json:"totalChanges"`
}

// InventoryRow is one entry of the usage inventory table. A file may
// legitimately repeat across the inventory and diffs lists; rows are keyed
// only by position.
type InventoryRow struct {
	File     string `json:"file"`
	APIsUsed string `json:"apisUsed"`
	Summary  string `json:"summary"`
}

// FileDiff is the parsed diff for a single file, together with the prose
// around it.
type FileDiff struct {
	File        string    `json:"file"`
	Description string    `json:"description,omitempty"`
	DiffContent string    `json:"diffContent"`
	Language    string    `json:"language"`
	KeyChanges  []string  `json:"keyChanges,omitempty"`
	Hunks       []Hunk    `json:"-"`
	Stats       DiffStats `json:"stats"`
	// Diagnostics records non-fatal structural oddities, such as a hunk
	// whose declared counts do not match the lines that followed.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ReportStats holds counts derived from the final report lists. The fields
// are always recomputed from the lists, never independently mutated.
type ReportStats struct {
	TotalFilesWithInventoryEntry int `json:"totalFilesWithInventoryEntry"`
	TotalFilesWithDiff           int `json:"totalFilesWithDiff"`
	NotesCount                   int `json:"notesCount"`
	SectionsCount                int `json:"sectionsCount"`
}

// MigrationReportData is the canonical parsed form of a migration report.
// It is constructed once per parse and never mutated afterwards; the caller
// owns the returned value outright.
type MigrationReportData struct {
	Title      string         `json:"title"`
	Inventory  []InventoryRow `json:"inventory"`
	Diffs      []FileDiff     `json:"diffs"`
	KeyChanges []string       `json:"keyChanges,omitempty"`
	Notes      []string       `json:"notes,omitempty"`
	Stats      ReportStats    `json:"stats"`
}

// ComputeStats derives the report-level stats from the assembled lists.
// sectionsCount is supplied by the caller because the number of source
// sections is known only to the tier that split the raw text.
func ComputeStats(data MigrationReportData, sectionsCount int) ReportStats {
	return ReportStats{
		TotalFilesWithInventoryEntry: len(data.Inventory),
		TotalFilesWithDiff:           len(data.Diffs),
		NotesCount:                   len(data.Notes),
		SectionsCount:                sectionsCount,
	}
}

// IntPtr returns a pointer to the given int value.
// Exported for use in tests across packages.
func IntPtr(n int) *int {
	return &n
}
