// Package json exports parsed report data as JSON files.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avermeer/migrep/internal/domain"
)

// Artifact describes one export request.
type Artifact struct {
	OutputDir string
	RunID     string
	Data      domain.MigrationReportData
}

// Writer persists parsed reports to disk as JSON files.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer with a timestamp supplier.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists the parsed report to disk and returns the file path.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := artifact.RunID
	if name == "" {
		name = w.now()
	}
	filePath := filepath.Join(artifact.OutputDir, fmt.Sprintf("report-%s.json", name))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(artifact.Data); err != nil {
		return "", fmt.Errorf("failed to encode report to json: %w", err)
	}

	return filePath, nil
}
