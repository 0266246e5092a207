// Package peaks finds sudden increases in a metric series.
package peaks

import (
	"math"
	"sort"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// DefaultPercentile is the diff percentile a point has to reach to count as a peak.
const DefaultPercentile = 75.0

// Detect returns the points of values whose increase over the previous point is
// at least the given percentile of all increases and strictly positive. Peaks
// are returned in time order. minutes supplies the minute of each point; when it
// is shorter than values the point index is used.
func Detect(minutes []int, values []float64, percentile float64) []models.Peak {
	if len(values) < 2 {
		return nil
	}

	diffs := Diff(values)
	threshold := Percentile(diffs, percentile)

	var peaks []models.Peak
	for i, d := range diffs {
		if d >= threshold && d > 0 {
			minute := i
			if i < len(minutes) {
				minute = minutes[i]
			}
			peaks = append(peaks, models.Peak{
				Minute:   minute,
				Value:    values[i],
				Increase: d,
			})
		}
	}

	return peaks
}

// DetectAll runs Detect over every metric present in s.
func DetectAll(s *models.Series, percentile float64) map[models.Metric][]models.Peak {
	result := make(map[models.Metric][]models.Peak)
	for _, metric := range models.Metrics {
		if !s.Has(metric) {
			continue
		}
		result[metric] = Detect(s.Minutes, s.Values(metric), percentile)
	}
	return result
}

// Diff returns the first difference of values; the first element is 0.
func Diff(values []float64) []float64 {
	diffs := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		diffs[i] = values[i] - values[i-1]
	}
	return diffs
}

// Percentile computes p (0-100) of values, interpolating linearly between the
// closest ranks.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
