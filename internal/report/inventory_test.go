package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInventory(t *testing.T) {
	content := `# Report

## 1. Kafka Usage Inventory

| File | APIs Used | Summary |
|------|-----------|---------|
| Api/ConsumerWrapper.cs | Confluent.Kafka, Consumer<string,string> | Kafka consumer wrapper |
| Api/ProducerWrapper.cs | Confluent.Kafka, Producer | Kafka producer wrapper |

## 2. Code Migration Diffs
`

	rows := ParseInventory(content)
	require.Len(t, rows, 2)
	assert.Equal(t, "Api/ConsumerWrapper.cs", rows[0].File)
	assert.Equal(t, "Confluent.Kafka, Consumer<string,string>", rows[0].APIsUsed)
	assert.Equal(t, "Kafka consumer wrapper", rows[0].Summary)
	assert.Equal(t, "Api/ProducerWrapper.cs", rows[1].File)
}

func TestParseInventory_NoHeading(t *testing.T) {
	assert.Empty(t, ParseInventory("# Report\n\n| a | b | c |\n"))
}

func TestParseInventory_WrongCellCountDiscarded(t *testing.T) {
	content := `## Usage Inventory

| File | APIs Used | Summary |
|------|-----------|---------|
| only-two-cells | x |
| a.cs | api | fine |
| four | cells | are | dropped |
`
	rows := ParseInventory(content)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.cs", rows[0].File)
}

func TestParseInventory_TableEndsAtProse(t *testing.T) {
	content := `## Usage Inventory

| File | APIs Used | Summary |
|------|-----------|---------|
| a.cs | api | fine |
Some trailing prose.
| b.cs | api | never reached |
`
	rows := ParseInventory(content)
	require.Len(t, rows, 1)
}

func TestParseInventory_HeaderOnlyTableDiscarded(t *testing.T) {
	content := "## Usage Inventory\n\n| File | APIs Used | Summary |\n|------|-----------|---------|\n"
	assert.Empty(t, ParseInventory(content))
}
