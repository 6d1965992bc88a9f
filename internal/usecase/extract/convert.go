package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avermeer/migrep/internal/diff"
	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/report"
)

// reportPayload is the structured document carried by the sentinel block and
// the sidecar file. The field names are a stable contract with the report
// generator; the two generator variants disagree on a few spellings, so both
// are declared and reconciled in one place here rather than probed ad hoc
// downstream.
type reportPayload struct {
	Meta       payloadMeta        `json:"meta"`
	Title      string             `json:"title"`
	Inventory  []payloadInventory `json:"inventory"`
	Diffs      []payloadDiff      `json:"diffs"`
	KeyChanges []string           `json:"keyChanges"`
	Notes      []string           `json:"notes"`
}

type payloadMeta struct {
	RepoURL     string `json:"repoUrl"`
	GeneratedAt string `json:"generatedAt"`
}

type payloadInventory struct {
	File      string   `json:"file"`
	KafkaAPIs []string `json:"kafka_apis"`
	APIsUsed  string   `json:"apis_used"`
	Summary   string   `json:"summary"`
}

type payloadDiff struct {
	// One generator writes "path"/"diff", the other "file"/"diff_content".
	Path        string `json:"path"`
	File        string `json:"file"`
	Diff        string `json:"diff"`
	DiffContent string `json:"diff_content"`
	Description string `json:"description"`
}

// decodePayload parses sentinel or sidecar JSON bytes.
func decodePayload(data []byte) (reportPayload, error) {
	var payload reportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return reportPayload{}, fmt.Errorf("decode report payload: %w", err)
	}
	return payload, nil
}

// convert maps a decoded payload into the canonical report shape. All three
// tiers funnel through this single conversion, so downstream consumers never
// see tier-specific shapes. Diff bodies are re-parsed into hunks so
// JSON-tier results carry the same structure as the regex tier's.
func convert(payload reportPayload) domain.MigrationReportData {
	inventory := make([]domain.InventoryRow, 0, len(payload.Inventory))
	for _, item := range payload.Inventory {
		apis := item.APIsUsed
		if apis == "" {
			apis = strings.Join(item.KafkaAPIs, ", ")
		}
		inventory = append(inventory, domain.InventoryRow{
			File:     item.File,
			APIsUsed: apis,
			Summary:  item.Summary,
		})
	}

	diffs := make([]domain.FileDiff, 0, len(payload.Diffs))
	for _, item := range payload.Diffs {
		file := item.Path
		if file == "" {
			file = item.File
		}
		body := item.Diff
		if body == "" {
			body = item.DiffContent
		}
		body = strings.Trim(report.Normalize(body), "\n")

		hunks := diff.Parse(body)
		diffs = append(diffs, domain.FileDiff{
			File:        file,
			Description: strings.TrimSpace(item.Description),
			DiffContent: body,
			Language:    report.LanguageForFile(file),
			Hunks:       hunks,
			Stats:       diff.Stats(hunks),
			Diagnostics: diff.CountMismatches(hunks),
		})
	}

	data := domain.MigrationReportData{
		Title:      payloadTitle(payload),
		Inventory:  inventory,
		Diffs:      diffs,
		KeyChanges: report.MergeDedupe(payload.KeyChanges),
		Notes:      report.MergeDedupe(payload.Notes),
	}
	data.Stats = domain.ComputeStats(data, len(diffs))
	return data
}

func payloadTitle(payload reportPayload) string {
	if payload.Title != "" {
		return payload.Title
	}
	if payload.Meta.RepoURL != "" {
		return "Migration Report for " + payload.Meta.RepoURL
	}
	return "Migration Report"
}
