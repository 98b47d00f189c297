package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SummaryRow is one recording-channel line of the run-level quality
// workbook.
type SummaryRow struct {
	ParticipantID       string
	VisitType           string
	Channel             string
	OverallQuality      string
	SNRFlaggedPct       float64
	AmplitudeFlaggedPct float64
}

const summarySheet = "Quality Summary"

var summaryHeader = []string{
	"Participant", "Visit", "Channel",
	"Overall Quality", "SNR Flagged %", "Amplitude Flagged %",
}

// WriteSummaryWorkbook writes the run-level quality overview as an xlsx
// workbook with one row per recording and channel.
func WriteSummaryWorkbook(path string, rows []SummaryRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	for colIdx, title := range summaryHeader {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(summarySheet, cell, title); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for rowIdx, row := range rows {
		values := []interface{}{
			row.ParticipantID,
			row.VisitType,
			row.Channel,
			row.OverallQuality,
			row.SNRFlaggedPct,
			row.AmplitudeFlaggedPct,
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", rowIdx, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
