package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"physioqc/internal/quality"
)

// WriteQualityReport writes one session's quality report as indented
// JSON.
func WriteQualityReport(path string, report *quality.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding quality report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
