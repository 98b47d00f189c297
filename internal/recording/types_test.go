package recording

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChannel(t *testing.T) {
	rec, err := New("rec1", nil)
	require.NoError(t, err)

	err = rec.AppendChannel(NewChannel("ECG", make([]float64, 1001), 100))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rec.EndTime(), 1e-9)

	// shorter channel must not shrink the end time
	err = rec.AppendChannel(NewChannel("RSP", make([]float64, 126), 25))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rec.EndTime(), 1e-9)

	// longer channel extends it
	err = rec.AppendChannel(NewChannel("EDA", make([]float64, 3001), 100))
	require.NoError(t, err)
	assert.InDelta(t, 30.0, rec.EndTime(), 1e-9)

	assert.Equal(t, 3, rec.ChannelCount())
	assert.Equal(t, []string{"ECG", "RSP", "EDA"}, rec.ChannelNames())
}

func TestAppendChannelDuplicateName(t *testing.T) {
	rec, err := New("rec1", []*Channel{
		NewChannel("ECG", make([]float64, 100), 100),
	})
	require.NoError(t, err)

	err = rec.AppendChannel(NewChannel("ECG", make([]float64, 100), 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, 1, rec.ChannelCount())
}

func TestAppendChannelConcurrent(t *testing.T) {
	rec, err := New("rec1", nil)
	require.NoError(t, err)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rec.AppendChannel(NewChannel(name, make([]float64, 10), 10)))
		}()
	}
	wg.Wait()

	assert.Equal(t, len(names), rec.ChannelCount())
}

func TestChannelLookup(t *testing.T) {
	rec, err := New("rec1", []*Channel{
		NewChannel("ECG", make([]float64, 100), 100),
	})
	require.NoError(t, err)

	ch, ok := rec.Channel("ECG")
	require.True(t, ok)
	assert.Equal(t, "ECG", ch.Name)

	// exact match only
	_, ok = rec.Channel("ecg")
	assert.False(t, ok)

	assert.True(t, rec.HasChannel("ECG"))
	assert.False(t, rec.HasChannel("RSP"))
}

func TestChannelTime(t *testing.T) {
	ch := NewChannel("ECG", make([]float64, 5), 10)

	times := ch.Time()
	require.Len(t, times, 5)
	assert.InDelta(t, 0.0, times[0], 1e-9)
	assert.InDelta(t, 0.4, times[4], 1e-9)
	assert.InDelta(t, 0.4, ch.EndTime(), 1e-9)

	empty := NewChannel("x", nil, 10)
	assert.Zero(t, empty.EndTime())
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		label string
		want  SignalKind
	}{
		{"ECG", KindECG},
		{"ECG - X, RSPEC-R", KindECG},
		{"EKG Lead II", KindECG},
		{"RSP", KindRSP},
		{"Respiration", KindRSP},
		{"EDA", KindEDA},
		{"GSR 100C", KindEDA},
		{"Blood Pressure", KindBP},
		{"NIBP-A", KindBP},
		{"BP cuff", KindBP},
		{"EMG zygomaticus", KindEMG},
		{"Temperature", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKind(tt.label))
		})
	}
}

func TestFindChannel(t *testing.T) {
	rec, err := New("rec1", []*Channel{
		NewChannel("ECG - X", make([]float64, 10), 100),
		NewChannel("ECG - Y", make([]float64, 10), 100),
		NewChannel("RSP", make([]float64, 10), 25),
	})
	require.NoError(t, err)

	t.Run("first match by insertion order", func(t *testing.T) {
		ch, ok := rec.FindChannel(OfKind(KindECG))
		require.True(t, ok)
		assert.Equal(t, "ECG - X", ch.Name)
	})

	t.Run("substring match", func(t *testing.T) {
		ch, ok := rec.FindChannel(NameContains("rsp"))
		require.True(t, ok)
		assert.Equal(t, "RSP", ch.Name)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := rec.FindChannel(OfKind(KindEDA))
		assert.False(t, ok)
	})
}
