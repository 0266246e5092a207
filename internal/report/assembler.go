// Package report assembles the final analysis report from the pipeline outputs.
package report

import (
	"time"

	"github.com/livecommerce/stream-analyzer/internal/correlation"
	"github.com/livecommerce/stream-analyzer/internal/models"
)

// Input is everything a report is built from.
type Input struct {
	ID              string
	SessionID       string
	Series          *models.Series
	Peaks           map[models.Metric][]models.CorrelatedPeak
	Classification  models.ClassificationResult
	HasComments     bool
	Events          []models.TimelineEvent
	TopKeywords     []models.KeywordCount
	Timing          map[int]int
	Recommendations *models.Recommendations
	GeneratedAt     time.Time
}

// Assemble packages the pipeline outputs into an AnalysisReport. Metric-reported
// and actual comment counts are both kept as they are; the actual count and the
// keyword and timing breakdowns are left out when there was no comment log.
func Assemble(in Input) *models.AnalysisReport {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	peaks := in.Peaks
	if peaks == nil {
		peaks = make(map[models.Metric][]models.CorrelatedPeak)
	}

	analysis := models.CommentAnalysis{
		Categories: in.Classification.Categories,
		Examples:   in.Classification.Examples,
		Total:      in.Classification.Total,
	}
	var actual *int
	if in.HasComments {
		analysis.TopKeywords = in.TopKeywords
		analysis.Timing = in.Timing
		actual = &in.Classification.Total
	}

	return &models.AnalysisReport{
		ID:              in.ID,
		SessionID:       in.SessionID,
		GeneratedAt:     generatedAt,
		SummaryStats:    SummaryStats(in.Series, actual),
		PeakAnalysis:    peaks,
		CommentAnalysis: analysis,
		Recommendations: in.Recommendations,
		VideoDuration:   len(in.Events),
	}
}

// SummaryStats computes the named totals and ratios. A key is only present when
// the metric it derives from exists in the series. actualComments is nil when
// no comment log was supplied.
func SummaryStats(s *models.Series, actualComments *int) map[string]float64 {
	stats := make(map[string]float64)

	viewers := s.Values(models.FieldViewers)
	if s.Has(models.FieldViewers) {
		stats[models.StatMaxViewers] = correlation.Max(viewers)
		stats[models.StatAvgViewers] = correlation.Mean(viewers)
		stats[models.StatViewerRetention] = correlation.RetentionRatio(viewers)
	}
	if s.Has(models.FieldLikes) {
		stats[models.StatTotalLikes] = correlation.Sum(s.Values(models.FieldLikes))
	}
	if s.Has(models.FieldComments) {
		stats[models.StatTotalCommentsMetric] = correlation.Sum(s.Values(models.FieldComments))
	}
	if s.Has(models.FieldClicks) {
		stats[models.StatTotalClicks] = correlation.Sum(s.Values(models.FieldClicks))
		if s.Has(models.FieldViewers) {
			stats[models.StatCTR] = correlation.ComputeCTR(s.Values(models.FieldClicks), viewers)
		}
	}
	if s.Has(models.FieldViewers) && (s.Has(models.FieldLikes) || s.Has(models.FieldComments)) {
		stats[models.StatEngagementRate] = correlation.EngagementRate(
			s.Values(models.FieldLikes), s.Values(models.FieldComments), viewers)
	}
	if actualComments != nil {
		stats[models.StatTotalCommentsActual] = float64(*actualComments)
	}

	return stats
}
