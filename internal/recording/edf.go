package recording

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenPSG/edf"
)

// annotationsLabel is the reserved EDF+ signal label carrying timestamped
// annotation lists (TALs), which this loader surfaces as event markers.
const annotationsLabel = "EDF Annotations"

// edfLayout is the subset of EDF header metadata the loader needs to walk
// signals and locate the annotations stream. The edf package reads and
// calibrates sample data; it does not expose its parsed header, so the
// fixed-offset metadata fields are read here directly.
type edfLayout struct {
	headerBytes   int
	dataRecords   int
	recordSeconds float64
	labels        []string
	samplesPerRec []int
}

// Load reads an EDF/EDF+ file into a Recording. Regular signals become
// channels; the EDF+ annotations signal, when present, is decoded into
// event markers. Participant ID and visit label are derived from the
// directory layout <root>/<participant>/<visit>/<file>.edf.
func Load(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	layout, err := readLayout(f)
	if err != nil {
		return nil, fmt.Errorf("parse EDF header: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind recording: %w", err)
	}
	reader, err := edf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("open EDF: %w", err)
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec := &Recording{
		ID:     id,
		byName: make(map[string]int),
	}
	rec.ParticipantID, rec.VisitLabel = sessionFromPath(path)

	annotationIndex := -1
	refRate := 0.0

	for i, label := range layout.labels {
		if label == annotationsLabel {
			annotationIndex = i
			continue
		}

		rate := float64(layout.samplesPerRec[i]) / layout.recordSeconds
		total := layout.samplesPerRec[i] * layout.dataRecords

		sr, err := reader.Signal(i)
		if err != nil {
			return nil, fmt.Errorf("open signal %q: %w", label, err)
		}
		samples := make([]float64, total)
		if err := readSamples(sr, samples); err != nil {
			return nil, fmt.Errorf("read signal %q: %w", label, err)
		}

		if err := rec.AppendChannel(NewChannel(label, samples, rate)); err != nil {
			return nil, err
		}
		if rate > refRate {
			refRate = rate
		}
	}

	if rec.ChannelCount() == 0 {
		return nil, fmt.Errorf("recording %s has no data channels", id)
	}

	if annotationIndex >= 0 {
		markers, err := readAnnotations(f, layout, annotationIndex, refRate)
		if err != nil {
			// Markers are required for windowing but not for quality
			// scoring; a corrupt annotation stream downgrades to a warning.
			slog.Warn("failed to decode EDF annotations",
				"recording", id,
				"error", err,
			)
		} else {
			rec.Markers = markers
		}
	}

	return rec, nil
}

// readSamples fills buf from an EDF signal reader, tolerating short reads
// at record boundaries.
func readSamples(sr *edf.SignalReader, buf []float64) error {
	n := 0
	for n < len(buf) {
		m, err := sr.Read(buf[n:])
		n += m
		if err != nil {
			if err == io.EOF && n == len(buf) {
				return nil
			}
			return err
		}
	}
	return nil
}

// readLayout parses the fixed-offset EDF header fields needed for signal
// layout: record count, record duration, and per-signal labels and sample
// counts.
func readLayout(r io.ReadSeeker) (*edfLayout, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	fixed := make([]byte, 256)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("read fixed header: %w", err)
	}

	headerBytes, err := headerInt(fixed[184:192])
	if err != nil {
		return nil, fmt.Errorf("header bytes: %w", err)
	}
	dataRecords, err := headerInt(fixed[236:244])
	if err != nil {
		return nil, fmt.Errorf("data records: %w", err)
	}
	if dataRecords < 0 {
		return nil, fmt.Errorf("unknown data record count")
	}
	recordSeconds, err := strconv.ParseFloat(strings.TrimSpace(string(fixed[244:252])), 64)
	if err != nil {
		return nil, fmt.Errorf("record duration: %w", err)
	}
	if recordSeconds <= 0 {
		return nil, fmt.Errorf("invalid record duration %v", recordSeconds)
	}
	signalCount, err := headerInt(fixed[252:256])
	if err != nil {
		return nil, fmt.Errorf("signal count: %w", err)
	}

	layout := &edfLayout{
		headerBytes:   headerBytes,
		dataRecords:   dataRecords,
		recordSeconds: recordSeconds,
		labels:        make([]string, signalCount),
		samplesPerRec: make([]int, signalCount),
	}

	// Signal header blocks are sequential field arrays:
	// label(16) transducer(80) dim(8) physmin(8) physmax(8) digmin(8)
	// digmax(8) prefilter(80) samples(8) reserved(32).
	labelBlock := make([]byte, signalCount*16)
	if _, err := io.ReadFull(r, labelBlock); err != nil {
		return nil, fmt.Errorf("read signal labels: %w", err)
	}
	for i := 0; i < signalCount; i++ {
		layout.labels[i] = strings.TrimSpace(string(labelBlock[i*16 : (i+1)*16]))
	}

	skip := int64(signalCount) * (80 + 8 + 8 + 8 + 8 + 8 + 80)
	if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("seek to sample counts: %w", err)
	}

	sampleBlock := make([]byte, signalCount*8)
	if _, err := io.ReadFull(r, sampleBlock); err != nil {
		return nil, fmt.Errorf("read sample counts: %w", err)
	}
	for i := 0; i < signalCount; i++ {
		n, err := headerInt(sampleBlock[i*8 : (i+1)*8])
		if err != nil {
			return nil, fmt.Errorf("samples per record for signal %d: %w", i, err)
		}
		layout.samplesPerRec[i] = n
	}

	return layout, nil
}

func headerInt(b []byte) (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// readAnnotations extracts the raw bytes of the annotations signal record
// by record and parses the contained TALs into event markers. Marker
// sample indices are expressed at the reference (maximum channel) rate.
func readAnnotations(f io.ReadSeeker, layout *edfLayout, annotationIndex int, refRate float64) ([]EventMarker, error) {
	recordSize := 0
	signalOffset := 0
	for i, n := range layout.samplesPerRec {
		if i < annotationIndex {
			signalOffset += n * 2
		}
		recordSize += n * 2
	}
	chunk := layout.samplesPerRec[annotationIndex] * 2

	var markers []EventMarker
	buf := make([]byte, chunk)
	for rec := 0; rec < layout.dataRecords; rec++ {
		pos := int64(layout.headerBytes) + int64(rec)*int64(recordSize) + int64(signalOffset)
		if _, err := f.Seek(pos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek annotation record %d: %w", rec, err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read annotation record %d: %w", rec, err)
		}
		parsed, err := parseTALs(buf, refRate)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec, err)
		}
		markers = append(markers, parsed...)
	}
	return markers, nil
}

// parseTALs decodes one record's annotation bytes. A record holds
// NUL-separated TALs of the form "onset[\x15duration]\x14text\x14...\x14".
// The leading record-timestamp TAL carries an empty text and is skipped.
func parseTALs(data []byte, refRate float64) ([]EventMarker, error) {
	var markers []EventMarker

	for _, tal := range bytes.Split(data, []byte{0x00}) {
		if len(tal) == 0 {
			continue
		}
		fields := bytes.Split(tal, []byte{0x14})
		if len(fields) < 2 {
			continue
		}

		timing := fields[0]
		if i := bytes.IndexByte(timing, 0x15); i >= 0 {
			timing = timing[:i] // duration is not used for point markers
		}
		onset, err := strconv.ParseFloat(string(timing), 64)
		if err != nil {
			return nil, fmt.Errorf("bad TAL onset %q: %w", timing, err)
		}

		for _, text := range fields[1:] {
			t := strings.TrimSpace(string(text))
			if t == "" {
				continue
			}
			markers = append(markers, EventMarker{
				Text:         t,
				SampleIndex:  int(math.Round(onset * refRate)),
				SamplingRate: refRate,
			})
		}
	}
	return markers, nil
}

// sessionFromPath derives (participant, visit label) from the directory
// layout <root>/<participant>/<visit>/<file>.edf. Missing levels yield
// "unknown".
func sessionFromPath(path string) (participant, visitLabel string) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	participant, visitLabel = "unknown", "unknown"
	if len(parts) >= 3 {
		participant = parts[len(parts)-3]
		visitLabel = parts[len(parts)-2]
	}
	return participant, visitLabel
}
