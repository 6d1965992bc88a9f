package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunID(t *testing.T) {
	ts := time.Date(2026, 8, 26, 14, 30, 52, 0, time.UTC)

	id := GenerateRunID(ts, "migration-report.md")
	assert.True(t, strings.HasPrefix(id, "run-20260826T143052Z-"))
	assert.Len(t, id, len("run-20260826T143052Z-")+6)
}

func TestGenerateRunID_Unique(t *testing.T) {
	a := GenerateRunID(time.Now(), "report.md")
	b := GenerateRunID(time.Now(), "report.md")
	assert.NotEqual(t, a, b, "nanosecond component should differ")
}

func TestGenerateRunID_TimeOrdered(t *testing.T) {
	early := GenerateRunID(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "r.md")
	late := GenerateRunID(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), "r.md")
	assert.Less(t, early, late)
}

func TestRunSucceeded(t *testing.T) {
	assert.True(t, Run{}.Succeeded())
	assert.False(t, Run{FailureReason: "empty"}.Succeeded())
}
