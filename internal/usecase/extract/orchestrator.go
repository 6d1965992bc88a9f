// Package extract implements the tiered extraction orchestrator: embedded
// sentinel JSON first, then the sidecar file, then the regex/structural
// pipeline. The first tier that succeeds wins outright; fields from
// different tiers are never merged.
package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/avermeer/migrep/internal/domain"
	"github.com/avermeer/migrep/internal/logging"
	"github.com/avermeer/migrep/internal/report"
)

// Sentinel markers delimiting the JSON block the generator embeds in the
// report for parsing resilience. Each appears on its own line.
const (
	SentinelBegin = "<!--BEGIN:REPORT_JSON-->"
	SentinelEnd   = "<!--END:REPORT_JSON-->"
)

// FileReader is the filesystem access the orchestrator needs for the
// sidecar tier. Reading the sidecar is the orchestrator's only I/O; the
// parsing itself is pure.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) bool
}

// SidecarPath derives the JSON sidecar path for a report by swapping the
// extension for .json.
func SidecarPath(reportPath string) string {
	ext := filepath.Ext(reportPath)
	return strings.TrimSuffix(reportPath, ext) + ".json"
}

// Request carries one report into the orchestrator. ReportPath is empty
// when the locator found no candidate at all; SidecarPath is empty when no
// sidecar convention applies.
type Request struct {
	ReportPath  string
	RawText     string
	SidecarPath string
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Files  FileReader
	Logger logging.Logger
}

// Orchestrator tries the extraction tiers in order and converts the winner
// into the canonical report shape.
type Orchestrator struct {
	files  FileReader
	logger logging.Logger
}

// NewOrchestrator constructs an orchestrator from its dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{files: deps.Files, logger: deps.Logger}
}

// Extract returns the parsed report or a typed *Failure. Tier failures
// before the last tier are logged and recovered by falling through; only
// NotFound, Empty, and Unparseable ever reach the caller.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (domain.MigrationReportData, error) {
	if req.ReportPath == "" && req.RawText == "" {
		return domain.MigrationReportData{}, NewNotFound("no report text available")
	}
	if strings.TrimSpace(req.RawText) == "" {
		return domain.MigrationReportData{}, NewEmpty(req.ReportPath)
	}

	// Tier 1: sentinel-delimited JSON embedded in the report itself.
	if data, ok := o.fromSentinel(ctx, req.RawText); ok {
		return data, nil
	}

	// Tier 2: sidecar JSON file next to the report.
	if data, ok := o.fromSidecar(ctx, req.SidecarPath); ok {
		return data, nil
	}

	// Tier 3: the regex/structural pipeline.
	data, err := report.Extract(req.RawText)
	if err != nil {
		if errors.Is(err, report.ErrNoStructure) {
			return domain.MigrationReportData{}, NewUnparseable(req.ReportPath)
		}
		return domain.MigrationReportData{}, err
	}
	return data, nil
}

func (o *Orchestrator) fromSentinel(ctx context.Context, raw string) (domain.MigrationReportData, bool) {
	block, ok := sentinelBlock(raw)
	if !ok {
		return domain.MigrationReportData{}, false
	}

	payload, err := decodePayload([]byte(block))
	if err != nil {
		o.warn(ctx, "sentinel JSON block does not parse, falling through", map[string]interface{}{
			"error": err.Error(),
		})
		return domain.MigrationReportData{}, false
	}
	return convert(payload), true
}

func (o *Orchestrator) fromSidecar(ctx context.Context, path string) (domain.MigrationReportData, bool) {
	if path == "" || o.files == nil || !o.files.FileExists(path) {
		return domain.MigrationReportData{}, false
	}

	raw, err := o.files.ReadFile(path)
	if err != nil {
		o.warn(ctx, "sidecar file unreadable, falling through", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return domain.MigrationReportData{}, false
	}

	payload, err := decodePayload(raw)
	if err != nil {
		o.warn(ctx, "sidecar JSON does not parse, falling through", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return domain.MigrationReportData{}, false
	}
	return convert(payload), true
}

// sentinelBlock returns the text between the sentinel markers, or false if
// either marker is missing or they are out of order.
func sentinelBlock(raw string) (string, bool) {
	begin := strings.Index(raw, SentinelBegin)
	if begin < 0 {
		return "", false
	}
	rest := raw[begin+len(SentinelBegin):]
	end := strings.Index(rest, SentinelEnd)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func (o *Orchestrator) warn(ctx context.Context, message string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.LogWarning(ctx, message, fields)
	}
}
