// Package correlation attaches timeline context to detected peaks and derives
// engagement ratios.
package correlation

import (
	"github.com/livecommerce/stream-analyzer/internal/models"
)

// DefaultLimit is how many peaks per metric are kept.
const DefaultLimit = 5

// Correlate joins each metric's peaks with the timeline event at exactly the same
// minute. Only the first limit peaks per metric are kept, in time order.
// Metrics without peaks are left out.
func Correlate(peaksByMetric map[models.Metric][]models.Peak, events []models.TimelineEvent, limit int) map[models.Metric][]models.CorrelatedPeak {
	byMinute := indexEvents(events)

	result := make(map[models.Metric][]models.CorrelatedPeak)
	for metric, peaks := range peaksByMetric {
		if len(peaks) == 0 {
			continue
		}
		if limit > 0 && len(peaks) > limit {
			peaks = peaks[:limit]
		}

		correlated := make([]models.CorrelatedPeak, 0, len(peaks))
		for _, p := range peaks {
			description := models.NoEventDescription
			if event, ok := byMinute[p.Minute]; ok {
				description = event.Description
			}
			correlated = append(correlated, models.CorrelatedPeak{
				Minute:           p.Minute,
				Value:            p.Value,
				Increase:         p.Increase,
				EventDescription: description,
			})
		}
		result[metric] = correlated
	}

	return result
}

// indexEvents keys events by minute. The first event listed for a minute wins.
func indexEvents(events []models.TimelineEvent) map[int]models.TimelineEvent {
	byMinute := make(map[int]models.TimelineEvent, len(events))
	for _, e := range events {
		if _, exists := byMinute[e.Minute]; !exists {
			byMinute[e.Minute] = e
		}
	}
	return byMinute
}
