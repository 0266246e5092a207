package peaks

import (
	"testing"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_SingleSpike(t *testing.T) {
	got := Detect(nil, []float64{10, 10, 50, 10, 10}, DefaultPercentile)

	require.Len(t, got, 1)
	assert.Equal(t, models.Peak{Minute: 2, Value: 50, Increase: 40}, got[0])
}

func TestDetect_UsesSeriesMinutes(t *testing.T) {
	got := Detect([]int{0, 1, 5}, []float64{100, 150, 400}, DefaultPercentile)

	require.Len(t, got, 1)
	assert.Equal(t, models.Peak{Minute: 5, Value: 400, Increase: 250}, got[0])
}

func TestDetect_NoPeaks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{name: "Empty", values: nil},
		{name: "Single point", values: []float64{42}},
		{name: "Constant", values: []float64{7, 7, 7, 7, 7, 7}},
		{name: "Long constant", values: make([]float64, 200)},
		{name: "Strictly decreasing", values: []float64{9, 8, 7, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Detect(nil, tt.values, DefaultPercentile))
		})
	}
}

func TestDetect_ChronologicalNotByMagnitude(t *testing.T) {
	values := []float64{0, 10, 10, 100, 100, 30, 30, 30}
	got := Detect(nil, values, 50)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Minute)
	assert.Equal(t, 3, got[1].Minute)
	assert.Less(t, got[0].Increase, got[1].Increase)
}

func TestDetect_ZeroThresholdExcludesFlatPoints(t *testing.T) {
	// Most diffs are 0 so the threshold is 0; flat points must still be excluded.
	got := Detect(nil, []float64{1, 1, 1, 1, 2}, DefaultPercentile)

	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Minute)
	for _, p := range got {
		assert.Greater(t, p.Increase, 0.0)
	}
}

func TestDetectAll(t *testing.T) {
	s := &models.Series{
		Minutes: []int{0, 1, 2, 3},
		Metrics: map[models.Metric][]float64{
			models.FieldViewers: {10, 10, 50, 50},
			models.FieldLikes:   {3, 3, 3, 3},
		},
	}

	got := DetectAll(s, DefaultPercentile)

	assert.Len(t, got, 2)
	assert.Len(t, got[models.FieldViewers], 1)
	assert.Empty(t, got[models.FieldLikes])
	_, hasClicks := got[models.FieldClicks]
	assert.False(t, hasClicks)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "Empty", values: nil, p: 75, want: 0},
		{name: "Exact rank", values: []float64{-40, 0, 0, 0, 40}, p: 75, want: 0},
		{name: "Interpolated", values: []float64{0, 50, 250}, p: 75, want: 150},
		{name: "Median of even set", values: []float64{4, 1, 3, 2}, p: 50, want: 2.5},
		{name: "Max", values: []float64{1, 5, 3}, p: 100, want: 5},
		{name: "Between ranks not nearest rank", values: []float64{1, 2, 3, 4}, p: 75, want: 3.25},
		{name: "Low quartile interpolated", values: []float64{10, 20, 30, 40, 50}, p: 10, want: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}
