package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarkers() []EventMarker {
	return []EventMarker{
		{Text: "Baseline Resting Period", SampleIndex: 0, SamplingRate: 100},
		{Text: "Speech Period", SampleIndex: 30000, SamplingRate: 100},
		{Text: "Speech Period", SampleIndex: 60000, SamplingRate: 100},
		{Text: "Baseline Resting Period", SampleIndex: 90000, SamplingRate: 100},
		{Text: "Recovery Period", SampleIndex: 120000, SamplingRate: 100},
	}
}

func TestMarkerIndexTimeOf(t *testing.T) {
	ix := NewMarkerIndex(testMarkers())

	tests := []struct {
		name       string
		text       string
		occurrence int
		wantTime   float64
		wantFound  bool
	}{
		{
			name:       "first occurrence",
			text:       "Speech Period",
			occurrence: 1,
			wantTime:   300,
			wantFound:  true,
		},
		{
			name:       "second occurrence",
			text:       "Speech Period",
			occurrence: 2,
			wantTime:   600,
			wantFound:  true,
		},
		{
			name:       "case insensitive match",
			text:       "speech period",
			occurrence: 1,
			wantTime:   300,
			wantFound:  true,
		},
		{
			name:       "occurrence beyond count is not found",
			text:       "Recovery Period",
			occurrence: 2,
			wantFound:  false,
		},
		{
			name:       "unknown text",
			text:       "Debrief Period",
			occurrence: 1,
			wantFound:  false,
		},
		{
			name:       "zero occurrence",
			text:       "Speech Period",
			occurrence: 0,
			wantFound:  false,
		},
		{
			name:       "negative occurrence",
			text:       "Speech Period",
			occurrence: -1,
			wantFound:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ix.TimeOf(tt.text, tt.occurrence)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.InDelta(t, tt.wantTime, got, 1e-9)
			}
		})
	}
}

func TestMarkerIndexOccurrences(t *testing.T) {
	ix := NewMarkerIndex(testMarkers())

	assert.Equal(t, 2, ix.Occurrences("Speech Period"))
	assert.Equal(t, 2, ix.Occurrences("baseline resting period"))
	assert.Equal(t, 1, ix.Occurrences("Recovery Period"))
	assert.Equal(t, 0, ix.Occurrences("Debrief Period"))
}

func TestMarkerIndexTexts(t *testing.T) {
	ix := NewMarkerIndex(testMarkers())

	texts := ix.Texts()
	require.Len(t, texts, 3)
	assert.Equal(t, []string{
		"baseline resting period",
		"speech period",
		"recovery period",
	}, texts)
}

func TestMarkerIndexEmpty(t *testing.T) {
	ix := NewMarkerIndex(nil)

	_, found := ix.TimeOf("anything", 1)
	assert.False(t, found)
	assert.Equal(t, 0, ix.Occurrences("anything"))
	assert.Empty(t, ix.Texts())
}

func TestEventMarkerTime(t *testing.T) {
	m := EventMarker{Text: "x", SampleIndex: 1500, SamplingRate: 100}
	assert.InDelta(t, 15.0, m.Time(), 1e-9)

	zeroRate := EventMarker{Text: "x", SampleIndex: 1500}
	assert.Zero(t, zeroRate.Time())
}
