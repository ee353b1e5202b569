package describe

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected schema.Summary
	}{
		{
			name:     "single value",
			values:   []float64{4},
			expected: schema.Summary{N: 1, Mean: 4, Median: 4, Min: 4, Max: 4},
		},
		{
			name:   "even count",
			values: []float64{2, 4, 4, 4, 5, 5, 7, 9},
			expected: schema.Summary{
				N: 8, Mean: 5, Median: 4.5,
				Std: math.Sqrt(32.0 / 7), SEM: math.Sqrt(32.0/7) / math.Sqrt(8),
				Min: 2, Max: 9,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.N, got.N)
			assert.InDelta(t, tt.expected.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.expected.Median, got.Median, 1e-12)
			assert.InDelta(t, tt.expected.Std, got.Std, 1e-12)
			assert.InDelta(t, tt.expected.SEM, got.SEM, 1e-12)
			assert.Equal(t, tt.expected.Min, got.Min)
			assert.Equal(t, tt.expected.Max, got.Max)
		})
	}

	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPearson(t *testing.T) {
	r, p, err := Pearson([]float64{1, 2, 3, 4, 5}, []float64{2, 4, 5, 4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.7746, r, 1e-4)
	assert.InDelta(t, 0.124, p, 1e-3)

	_, _, err = Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, schema.ErrDegenerateInput)

	_, _, err = Pearson([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, schema.ErrInsufficientSample)
}

func TestLog10(t *testing.T) {
	lx, ly, dropped := Log10([]float64{100, 0, -3, 1000, math.NaN()}, []float64{1, 2, 3, 4, 5})
	assert.Equal(t, []float64{2, 3}, lx)
	assert.Equal(t, []float64{1, 4}, ly)
	assert.Equal(t, 3, dropped)
}

func ts(h int) time.Time { return time.Date(2012, 3, 7, h, 0, 0, 0, time.UTC) }

func TestRatio(t *testing.T) {
	num := []schema.DenseSample{{Timestamp: ts(0), Value: 10}, {Timestamp: ts(1), Value: 4}, {Timestamp: ts(2), Value: 6}, {Timestamp: ts(3), Value: 1}}
	den := []schema.DenseSample{{Timestamp: ts(0), Value: 5}, {Timestamp: ts(1), Value: 0}, {Timestamp: ts(3), Value: 2}}

	series, dropped, err := Ratio("TOTUSJZ/USFLUX", num, den)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "TOTUSJZ/USFLUX", series.Name())
	assert.Equal(t, []schema.DenseSample{{Timestamp: ts(0), Value: 2}, {Timestamp: ts(3), Value: 0.5}}, series.Samples())
}

func TestAlign(t *testing.T) {
	left := []schema.DenseSample{{Timestamp: ts(0), Value: 1}, {Timestamp: ts(1), Value: 2}}
	right := []schema.DenseSample{{Timestamp: ts(1), Value: 20}, {Timestamp: ts(2), Value: 30}}
	x, y := Align(left, right)
	assert.Equal(t, []float64{2}, x)
	assert.Equal(t, []float64{20}, y)
}

func TestPhaseStats(t *testing.T) {
	at := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
	events := []schema.Event{
		{Timestamp: at(1997, 6, 1), Velocity: 400, Brightness: 2},
		{Timestamp: at(1998, 12, 31), Velocity: 600, Brightness: 4},
		{Timestamp: at(2001, 3, 3), Velocity: 1200, Brightness: 10},
		{Timestamp: at(2001, 3, 4), Velocity: 0, Brightness: 10},  // filtered velocity
		{Timestamp: at(2013, 1, 1), Velocity: 900, Brightness: 0}, // filtered brightness
		{Timestamp: at(2005, 1, 1), Velocity: 900, Brightness: 5}, // between phases
	}

	report := PhaseStats(events, schema.DefaultPhases)
	assert.Equal(t, 6, report.Events)
	assert.Equal(t, 3, report.Excluded)
	require.Len(t, report.Phases, 4)

	sc23min := report.Phases[0]
	assert.Equal(t, "sc23_min", sc23min.Phase.Name)
	assert.Equal(t, 2, sc23min.Brightness.N)
	assert.InDelta(t, 3.0, sc23min.Brightness.Mean, 1e-12)
	assert.InDelta(t, 500.0, sc23min.Velocity.Median, 1e-12)

	assert.Equal(t, 1, report.Phases[1].Velocity.N)
	assert.Zero(t, report.Phases[2].Brightness.N)
	assert.Zero(t, report.Phases[3].Brightness.N)
}
