package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avermeer/migrep/internal/diff"
)

const sampleReport = `# Kafka → Azure Service Bus Migration Report

## 1. Kafka Usage Inventory

| File | APIs Used | Summary |
|------|-----------|---------|
| Api/ConsumerWrapper.cs | Confluent.Kafka, Consumer<string,string> | Kafka consumer wrapper |
| Api/ProducerWrapper.cs | Confluent.Kafka, Producer | Kafka producer wrapper |

## 2. Code Migration Diffs

### Api/ConsumerWrapper.cs
Key changes:
- Replaced consumer loop with Service Bus processor

` + "```diff" + `
--- a/Api/ConsumerWrapper.cs
+++ b/Api/ConsumerWrapper.cs
@@ -1,2 +1,2 @@
-using Confluent.Kafka;
+using Azure.Messaging.ServiceBus;
 namespace Api
` + "```" + `

### Api/ProducerWrapper.cs
- Migrated producer to ServiceBusSender
` + "```diff" + `
+var sender = client.CreateSender(queueName);
-var producer = new ProducerBuilder<string, string>(config).Build();
` + "```" + `

## Important Notes

Connection strings replace bootstrap servers.
`

func TestExtract_FullReport(t *testing.T) {
	data, err := Extract(sampleReport)
	require.NoError(t, err)

	assert.Equal(t, "Kafka → Azure Service Bus Migration Report", data.Title)
	require.Len(t, data.Inventory, 2)
	require.Len(t, data.Diffs, 2)

	consumer := data.Diffs[0]
	assert.Equal(t, "Api/ConsumerWrapper.cs", consumer.File)
	assert.Equal(t, "csharp", consumer.Language)
	assert.Equal(t, []string{"Replaced consumer loop with Service Bus processor"}, consumer.KeyChanges)
	require.Len(t, consumer.Hunks, 1)
	assert.Equal(t, "@@ -1,2 +1,2 @@", consumer.Hunks[0].Header)
	assert.Equal(t, 1, consumer.Stats.Additions)
	assert.Equal(t, 1, consumer.Stats.Deletions)

	producer := data.Diffs[1]
	require.Len(t, producer.Hunks, 1)
	assert.Equal(t, diff.SyntheticHeader, producer.Hunks[0].Header)
	assert.Equal(t, 1, producer.Stats.Additions)
	assert.Equal(t, 1, producer.Stats.Deletions)
	assert.Equal(t, []string{"Migrated producer to ServiceBusSender"}, producer.KeyChanges)
	// No explicit header, so the bullet list stays in the description.
	assert.Equal(t, "- Migrated producer to ServiceBusSender", producer.Description)

	assert.Equal(t, []string{"Connection strings replace bootstrap servers."}, data.Notes)

	assert.Equal(t, 2, data.Stats.TotalFilesWithInventoryEntry)
	assert.Equal(t, 2, data.Stats.TotalFilesWithDiff)
	assert.Equal(t, 1, data.Stats.NotesCount)
	assert.Equal(t, 2, data.Stats.SectionsCount)
}

func TestExtract_StatsReproducibleFromHunks(t *testing.T) {
	data, err := Extract(sampleReport)
	require.NoError(t, err)

	for _, fd := range data.Diffs {
		assert.Equal(t, fd.Stats, diff.Stats(fd.Hunks), "stats must re-sum for %s", fd.File)
	}
}

func TestExtract_ReportLevelKeyChangesAggregated(t *testing.T) {
	data, err := Extract(sampleReport)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Replaced consumer loop with Service Bus processor",
		"Migrated producer to ServiceBusSender",
	}, data.KeyChanges)
}

func TestExtract_Unparseable(t *testing.T) {
	_, err := Extract("plain prose with no headings, tables, or sections")
	assert.ErrorIs(t, err, ErrNoStructure)
}

func TestExtract_TitleOnlyIsEnough(t *testing.T) {
	data, err := Extract("# Just A Title\n")
	require.NoError(t, err)
	assert.Equal(t, "Just A Title", data.Title)
	assert.Empty(t, data.Diffs)
}

func TestExtract_MixedLineEndings(t *testing.T) {
	data, err := Extract("# Title\r\n\r\n## Diffs\r\n\r\n### f.cs\r\n```diff\r\n+x\r\n```\r\n")
	require.NoError(t, err)
	require.Len(t, data.Diffs, 1)
	assert.Equal(t, "+x", data.Diffs[0].DiffContent)
}

func TestLanguageForFile(t *testing.T) {
	assert.Equal(t, "csharp", LanguageForFile("Api/ConsumerWrapper.cs"))
	assert.Equal(t, "yaml", LanguageForFile("deploy/app.yml"))
	assert.Equal(t, "text", LanguageForFile("Dockerfile"))
}
