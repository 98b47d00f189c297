package operations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestTrackerLifecycle(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	rec := filepath.Join(dataDir, "P001", "TSST Visit", "a.edf")
	writeFile(t, rec, []byte("edf-bytes-v1"))

	tracker, err := LoadTracker(outDir, dataDir)
	require.NoError(t, err)
	assert.Equal(t, 0, tracker.Len())

	process, err := tracker.ShouldProcess(rec)
	require.NoError(t, err)
	assert.True(t, process, "unseen file needs processing")

	require.NoError(t, tracker.MarkProcessed(rec, "P001", "TSST Visit"))
	require.NoError(t, tracker.Save())

	// reload from disk
	tracker, err = LoadTracker(outDir, dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.Len())

	process, err = tracker.ShouldProcess(rec)
	require.NoError(t, err)
	assert.False(t, process, "unchanged file is skipped")

	// content change invalidates the hash
	writeFile(t, rec, []byte("edf-bytes-v2"))
	process, err = tracker.ShouldProcess(rec)
	require.NoError(t, err)
	assert.True(t, process, "modified file needs reprocessing")
}

func TestTrackerClear(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()

	files := map[string]string{
		filepath.Join(dataDir, "P001", "TSST Visit", "a.edf"): "P001",
		filepath.Join(dataDir, "P001", "PDST Visit", "b.edf"): "P001",
		filepath.Join(dataDir, "P002", "TSST Visit", "c.edf"): "P002",
	}
	tracker, err := LoadTracker(outDir, dataDir)
	require.NoError(t, err)
	for path, participant := range files {
		writeFile(t, path, []byte(path))
		require.NoError(t, tracker.MarkProcessed(path, participant, "visit"))
	}
	require.Equal(t, 3, tracker.Len())

	assert.Equal(t, 2, tracker.ClearParticipant("P001"))
	assert.Equal(t, 1, tracker.Len())
	assert.Equal(t, 0, tracker.ClearParticipant("P001"), "already cleared")

	assert.Equal(t, 1, tracker.ClearAll())
	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerCorruptFile(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFile(t, filepath.Join(outDir, TrackerFileName), []byte("{not json"))

	_, err := LoadTracker(outDir, dataDir)
	require.Error(t, err)
}

func TestDiscoverRecordings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "P002", "TSST Visit", "b.edf"), []byte("x"))
	writeFile(t, filepath.Join(root, "P001", "TSST Visit", "a.edf"), []byte("x"))
	writeFile(t, filepath.Join(root, "P001", "TSST Visit", "a.EDF"), []byte("x"))
	writeFile(t, filepath.Join(root, "P001", "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, ".cache", "c.edf"), []byte("x"))

	paths, err := DiscoverRecordings(root)
	require.NoError(t, err)
	require.Len(t, paths, 3, "extension match is case-insensitive, hidden dirs skipped")
	assert.True(t, sortedStrings(paths))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return false
		}
	}
	return true
}

func TestDiscoverRecordingsMissingRoot(t *testing.T) {
	_, err := DiscoverRecordings(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
