package recording

import (
	"fmt"
	"sync"

	"physioqc/internal/window"
)

// EventMarker is a named event embedded in the recording at a sample
// position. Markers are immutable and kept in file order, which is
// chronological by SampleIndex.
type EventMarker struct {
	Text         string  `json:"text"`
	SampleIndex  int     `json:"sample_index"`
	SamplingRate float64 `json:"sampling_rate"`
}

// Time returns the marker position in seconds from recording start.
func (m EventMarker) Time() float64 {
	if m.SamplingRate <= 0 {
		return 0
	}
	return float64(m.SampleIndex) / m.SamplingRate
}

// Channel is a single physiological data channel. The time vector is
// derived from the sample index and sampling rate rather than stored.
type Channel struct {
	Name         string
	Kind         SignalKind
	Samples      []float64
	SamplingRate float64

	// Binary quality flags (1 = flagged window) produced by the sliding
	// window scorers. Only set on derived quality channels.
	SNRFlags       []int
	AmplitudeFlags []int
}

// NewChannel creates a channel and classifies its signal kind from the name.
func NewChannel(name string, samples []float64, samplingRate float64) *Channel {
	return &Channel{
		Name:         name,
		Kind:         ClassifyKind(name),
		Samples:      samples,
		SamplingRate: samplingRate,
	}
}

// Time returns the derived time vector in seconds (index / sampling rate).
func (c *Channel) Time() []float64 {
	t := make([]float64, len(c.Samples))
	for i := range t {
		t[i] = float64(i) / c.SamplingRate
	}
	return t
}

// EndTime returns the time of the final sample, or 0 for an empty channel.
func (c *Channel) EndTime() float64 {
	if len(c.Samples) == 0 || c.SamplingRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)-1) / c.SamplingRate
}

// Duration returns the channel duration in seconds.
func (c *Channel) Duration() float64 {
	return c.EndTime()
}

// Recording is the container for all channels, event markers, and study
// phase windows of a single session.
type Recording struct {
	ID            string
	ParticipantID string
	VisitLabel    string

	Markers []EventMarker
	Windows []*window.Window

	mu       sync.Mutex
	channels []*Channel
	byName   map[string]int
	endTime  float64
}

// New creates a Recording from an ordered set of channels. Channel names
// must be unique.
func New(id string, channels []*Channel) (*Recording, error) {
	r := &Recording{
		ID:     id,
		byName: make(map[string]int, len(channels)),
	}
	for _, ch := range channels {
		if err := r.AppendChannel(ch); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AppendChannel adds a channel to the recording and bumps EndTime if the
// new channel extends past it. Safe for concurrent use; distinct channels
// may be scored and appended from parallel goroutines.
func (r *Recording) AppendChannel(ch *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[ch.Name]; exists {
		return fmt.Errorf("channel %q already exists in recording %s", ch.Name, r.ID)
	}
	r.byName[ch.Name] = len(r.channels)
	r.channels = append(r.channels, ch)
	if end := ch.EndTime(); end > r.endTime {
		r.endTime = end
	}
	return nil
}

// Channel returns the channel with the exact given name.
func (r *Recording) Channel(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.channels[i], true
}

// Channels returns the channels in insertion (discovery) order.
func (r *Recording) Channels() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Channel, len(r.channels))
	copy(out, r.channels)
	return out
}

// ChannelNames returns all channel names in insertion order.
func (r *Recording) ChannelNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.channels))
	for i, ch := range r.channels {
		names[i] = ch.Name
	}
	return names
}

// HasChannel reports whether a channel with the exact name exists.
func (r *Recording) HasChannel(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byName[name]
	return ok
}

// EndTime returns the maximum final sample time across all channels.
func (r *Recording) EndTime() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endTime
}

// ChannelCount returns the number of channels.
func (r *Recording) ChannelCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

// SetWindows attaches the resolved study-phase windows.
func (r *Recording) SetWindows(windows []*window.Window) {
	r.Windows = windows
}

// MarkerIndex returns an index over the recording's event markers.
func (r *Recording) MarkerIndex() *MarkerIndex {
	return NewMarkerIndex(r.Markers)
}
