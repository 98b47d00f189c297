package operations

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// trackerEntry records one processed file. The content hash, not the
// path, decides whether a file needs reprocessing: renaming a file does
// not trigger a re-run, editing it does.
type trackerEntry struct {
	ParticipantID string    `json:"participant_id"`
	VisitLabel    string    `json:"visit_label"`
	SHA256        string    `json:"sha256"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Tracker persists which recordings have already been processed, keyed
// by path relative to the data root, as a JSON file in the output
// directory.
type Tracker struct {
	path    string
	root    string
	entries map[string]trackerEntry
}

// TrackerFileName is the tracker's on-disk name inside the output dir.
const TrackerFileName = "processed.json"

// LoadTracker reads the tracker file from outputDir, returning an empty
// tracker when none exists. root is the data directory entries are keyed
// against.
func LoadTracker(outputDir, root string) (*Tracker, error) {
	t := &Tracker{
		path:    filepath.Join(outputDir, TrackerFileName),
		root:    root,
		entries: make(map[string]trackerEntry),
	}
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tracker: %w", err)
	}
	if err := json.Unmarshal(data, &t.entries); err != nil {
		return nil, fmt.Errorf("parsing tracker %s: %w", t.path, err)
	}
	return t, nil
}

// Save writes the tracker back to disk.
func (t *Tracker) Save() error {
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tracker: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("creating tracker dir: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("writing tracker: %w", err)
	}
	return nil
}

// ShouldProcess reports whether path needs processing: true for unseen
// files and for files whose content changed since they were tracked.
func (t *Tracker) ShouldProcess(path string) (bool, error) {
	key, err := t.key(path)
	if err != nil {
		return false, err
	}
	entry, ok := t.entries[key]
	if !ok {
		return true, nil
	}
	hash, err := hashFile(path)
	if err != nil {
		return false, err
	}
	return hash != entry.SHA256, nil
}

// MarkProcessed records path as processed with its current content hash.
func (t *Tracker) MarkProcessed(path, participantID, visitLabel string) error {
	key, err := t.key(path)
	if err != nil {
		return err
	}
	hash, err := hashFile(path)
	if err != nil {
		return err
	}
	t.entries[key] = trackerEntry{
		ParticipantID: participantID,
		VisitLabel:    visitLabel,
		SHA256:        hash,
		ProcessedAt:   time.Now().UTC(),
	}
	return nil
}

// ClearParticipant drops every entry for one participant so their files
// reprocess on the next run. Returns the number of entries removed.
func (t *Tracker) ClearParticipant(participantID string) int {
	removed := 0
	for key, entry := range t.entries {
		if entry.ParticipantID == participantID {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// ClearAll drops every entry. Returns the number of entries removed.
func (t *Tracker) ClearAll() int {
	n := len(t.entries)
	t.entries = make(map[string]trackerEntry)
	return n
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	return len(t.entries)
}

func (t *Tracker) key(path string) (string, error) {
	rel, err := filepath.Rel(t.root, path)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
