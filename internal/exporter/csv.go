package exporter

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"physioqc/internal/features"
)

// WriteFeatureCSV writes one session's feature rows. The header is the
// fixed identifier columns followed by the name-sorted union of feature
// keys across all rows, so sessions with missing signals still line up
// when concatenated. NaN values are written as empty cells.
func WriteFeatureCSV(path string, rows []features.Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	featureCols := featureColumns(rows)
	header := append(append([]string{}, features.IDColumns...), featureCols...)

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		record := make([]string, 0, len(header))
		record = append(record,
			row.ParticipantID,
			row.VisitType,
			row.Phase,
			formatFloat(row.StartTime),
			formatFloat(row.EndTime),
			formatFloat(row.Duration),
		)
		for _, col := range featureCols {
			v, ok := row.Values[col]
			if !ok || math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, formatFloat(v))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return file.Close()
}

// featureColumns returns the sorted union of feature names across rows.
func featureColumns(rows []features.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for name := range row.Values {
			seen[name] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for name := range seen {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
