package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyChanges_ExplicitHeaderInDescription(t *testing.T) {
	section := Section{
		Description: "Intro text.\n\n**Key Changes:**\n- Replaced producer\n- Added retry\n\nOutro.",
	}

	changes, description := KeyChanges(section, nil)
	assert.Equal(t, []string{"Replaced producer", "Added retry"}, changes)
	assert.Equal(t, "Intro text.\n\n\nOutro.", description)
	assert.NotContains(t, description, "Key Changes")
}

func TestKeyChanges_HeadingStyledHeader(t *testing.T) {
	section := Section{Description: "#### Key changes\n- Swapped client libraries"}
	changes, _ := KeyChanges(section, nil)
	assert.Equal(t, []string{"Swapped client libraries"}, changes)
}

func TestKeyChanges_AnyBulletListWithoutHeader(t *testing.T) {
	section := Section{Description: "Summary of work:\n- Moved config to Service Bus\n- Dropped consumer group"}
	changes, description := KeyChanges(section, nil)
	assert.Equal(t, []string{"Moved config to Service Bus", "Dropped consumer group"}, changes)
	// Without an explicit header nothing is stripped.
	assert.Equal(t, section.Description, description)
}

func TestKeyChanges_AfterDiffHeader(t *testing.T) {
	section := Section{
		Description: "No bullets here.",
		AfterDiff:   "Key changes:\n- Rewired error handling",
	}
	changes, _ := KeyChanges(section, nil)
	assert.Equal(t, []string{"Rewired error handling"}, changes)
}

func TestKeyChanges_PriorityOrderStopsAtFirstMatch(t *testing.T) {
	section := Section{
		Description: "Key changes:\n- From description",
		AfterDiff:   "Key changes:\n- From after diff",
	}
	changes, _ := KeyChanges(section, nil)
	assert.Equal(t, []string{"From description"}, changes)
}

func TestKeyChanges_MergesReclassifiedBullets(t *testing.T) {
	section := Section{Description: "Key changes:\n- Replaced producer"}
	changes, _ := KeyChanges(section, []string{"replaced producer", "Added sender"})
	assert.Equal(t, []string{"Replaced producer", "Added sender"}, changes)
}

func TestKeyChanges_NoSources(t *testing.T) {
	changes, description := KeyChanges(Section{Description: "Just prose."}, nil)
	assert.Empty(t, changes)
	assert.Equal(t, "Just prose.", description)
}

func TestMergeDedupe(t *testing.T) {
	merged := MergeDedupe([]string{"A", "b", ""}, []string{"a", "C"})
	assert.Equal(t, []string{"A", "b", "C"}, merged)
}

func TestExtractNotes(t *testing.T) {
	content := `# Report

## Important Notes

Run the consumers side by side during cutover.
Topics map to queues one to one.

## Other Section

Note: connection strings replace bootstrap servers.
`

	notes := ExtractNotes(content)
	require.Len(t, notes, 3)
	assert.Equal(t, "Run the consumers side by side during cutover.", notes[0])
	assert.Equal(t, "Topics map to queues one to one.", notes[1])
	assert.Equal(t, "connection strings replace bootstrap servers.", notes[2])
}

func TestExtractNotes_NoteBulletInsideNotesSectionCollectedOnce(t *testing.T) {
	content := `# Report

## Important Notes

- Note: check config
`

	notes := ExtractNotes(content)
	require.Len(t, notes, 1)
	assert.Equal(t, "check config", notes[0])
}

func TestExtractNotes_Empty(t *testing.T) {
	assert.Empty(t, ExtractNotes("# Report\n\nNothing relevant here.\n"))
}
