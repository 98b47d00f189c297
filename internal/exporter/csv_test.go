package exporter

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physioqc/internal/features"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteFeatureCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "features.csv")

	rows := []features.Row{
		{
			ParticipantID: "P001",
			VisitType:     "TSST Visit",
			Phase:         "Baseline",
			StartTime:     10,
			EndTime:       310,
			Duration:      300,
			Values: map[string]float64{
				"hrv_mean_hr":   62.5,
				"eda_mean":      math.NaN(),
				"hrv_num_beats": 312,
			},
		},
		{
			ParticipantID: "P001",
			VisitType:     "TSST Visit",
			Phase:         "Recovery",
			StartTime:     600,
			EndTime:       900,
			Duration:      300,
			Values: map[string]float64{
				"hrv_mean_hr": 58,
				"rsp_num_breaths": 71,
			},
		},
	}

	require.NoError(t, WriteFeatureCSV(path, rows))

	records := readCSV(t, path)
	require.Len(t, records, 3)

	// id columns first, then the name-sorted union of feature columns
	wantHeader := append(append([]string{}, features.IDColumns...),
		"eda_mean", "hrv_mean_hr", "hrv_num_beats", "rsp_num_breaths")
	assert.Equal(t, wantHeader, records[0])

	baseline := records[1]
	assert.Equal(t, "P001", baseline[0])
	assert.Equal(t, "Baseline", baseline[2])
	assert.Equal(t, "", baseline[6], "NaN becomes an empty cell")
	assert.Equal(t, "62.5", baseline[7])
	assert.Equal(t, "312", baseline[8])
	assert.Equal(t, "", baseline[9], "feature absent from this row")

	recovery := records[2]
	assert.Equal(t, "Recovery", recovery[2])
	assert.Equal(t, "58", recovery[7])
	assert.Equal(t, "71", recovery[9])
}

func TestWriteFeatureCSVNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.csv")
	require.NoError(t, WriteFeatureCSV(path, nil))

	records := readCSV(t, path)
	require.Len(t, records, 1, "header only")
	assert.Equal(t, features.IDColumns, records[0])
}
