package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections_Basic(t *testing.T) {
	content := `# Migration Report

## 2. Code Migration Diffs

### Api/ConsumerWrapper.cs
Swap the consumer for a Service Bus processor.
` + "```diff\n-using Confluent.Kafka;\n+using Azure.Messaging.ServiceBus;\n```" + `

### Api/ProducerWrapper.cs
` + "```diff\n-old\n+new\n```" + `
`

	sections := SplitSections(content)
	require.Len(t, sections, 2)

	assert.Equal(t, "Api/ConsumerWrapper.cs", sections[0].File)
	assert.Equal(t, "Swap the consumer for a Service Bus processor.", sections[0].Description)
	assert.Equal(t, "-using Confluent.Kafka;\n+using Azure.Messaging.ServiceBus;", sections[0].DiffContent)
	assert.Equal(t, "Api/ProducerWrapper.cs", sections[1].File)
}

func TestSplitSections_DuplicatedFences(t *testing.T) {
	// The generator sometimes emits a stale fenced block before the real
	// one; the last opening fence wins.
	content := "## Code Migration Diffs\n\n### f.cs\nDo X.\n```diff\nSTALE\n```\nDo Y.\n```diff\n+real\n```\n"

	sections := SplitSections(content)
	require.Len(t, sections, 1)

	assert.Equal(t, "+real", sections[0].DiffContent)
	assert.Equal(t, "Do X.\n```diff\nSTALE\n```\nDo Y.", sections[0].Description)
}

func TestSplitSections_AfterDiffTextRetained(t *testing.T) {
	content := "## Diffs\n\n### f.cs\n```diff\n+x\n```\nKey changes:\n- Replaced producer\n"

	sections := SplitSections(content)
	require.Len(t, sections, 1)
	assert.Equal(t, "Key changes:\n- Replaced producer", sections[0].AfterDiff)
}

func TestSplitSections_NoDiffsHeadingFallsBackToWholeDocument(t *testing.T) {
	content := "### standalone.cs\n```diff\n+x\n```\n"
	sections := SplitSections(content)
	require.Len(t, sections, 1)
	assert.Equal(t, "standalone.cs", sections[0].File)
	assert.Equal(t, "+x", sections[0].DiffContent)
}

func TestSplitSections_MissingClosingFence(t *testing.T) {
	content := "## Diffs\n\n### f.cs\n```diff\n+unterminated\n"
	sections := SplitSections(content)
	require.Len(t, sections, 1)
	assert.Equal(t, "+unterminated", sections[0].DiffContent)
	assert.Empty(t, sections[0].AfterDiff)
}

func TestSplitSections_FencelessSection(t *testing.T) {
	content := "## Diffs\n\n### readme.md\n*No diff content generated*\n"
	sections := SplitSections(content)
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].DiffContent)
	assert.Equal(t, "*No diff content generated*", sections[0].Description)
}

func TestExtractTitle(t *testing.T) {
	title, ok := ExtractTitle("# Kafka Migration Report\n\nbody\n")
	assert.True(t, ok)
	assert.Equal(t, "Kafka Migration Report", title)

	title, ok = ExtractTitle("no heading here\n")
	assert.False(t, ok)
	assert.Equal(t, "Unknown Report", title)
}
