// Package analysis runs the broadcast analysis pipeline and manages analysis
// sessions kept in storage.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livecommerce/stream-analyzer/internal/comments"
	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/livecommerce/stream-analyzer/internal/correlation"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/peaks"
	"github.com/livecommerce/stream-analyzer/internal/report"
	"github.com/livecommerce/stream-analyzer/internal/schema"
	"github.com/livecommerce/stream-analyzer/internal/series"
	"github.com/livecommerce/stream-analyzer/internal/timeline"
	"github.com/sirupsen/logrus"
)

// Options tune a single analysis run.
type Options struct {
	Percentile        float64
	PeakLimit         int
	ExampleLimit      int
	KeywordCount      int
	SyntheticTimeline bool
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		Percentile:   peaks.DefaultPercentile,
		PeakLimit:    correlation.DefaultLimit,
		ExampleLimit: comments.DefaultExampleLimit,
		KeywordCount: comments.DefaultKeywordCount,
	}
}

// OptionsFromConfig reads the tuning knobs from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Percentile:        cfg.PeakPercentile,
		PeakLimit:         cfg.PeakLimit,
		ExampleLimit:      cfg.ExamplesPerCategory,
		KeywordCount:      cfg.TopKeywords,
		SyntheticTimeline: cfg.SyntheticTimeline,
	}
}

// Inputs are the artifacts of one broadcast. A comment table without columns
// means the broadcast has no comment log.
type Inputs struct {
	SessionID string
	Metrics   models.RawTable
	Comments  models.RawTable
	Events    []models.TimelineEvent
}

// Analyze runs the pipeline over one broadcast. It keeps no state between calls.
func Analyze(ctx context.Context, in Inputs, opts Options) (*models.AnalysisReport, error) {
	mapping, err := schema.Detect(in.Metrics.Columns, schema.MetricsProfile)
	if err != nil {
		return nil, err
	}
	s, err := series.Normalize(in.Metrics, mapping)
	if err != nil {
		return nil, err
	}

	detected := peaks.DetectAll(s, opts.Percentile)

	events := in.Events
	if len(events) == 0 && opts.SyntheticTimeline {
		synthetic, err := timeline.SyntheticSource{Duration: duration(s)}.Events(ctx, in.SessionID)
		if err != nil && !errors.Is(err, timeline.ErrNoEvents) {
			return nil, err
		}
		events = synthetic
	}
	correlated := correlation.Correlate(detected, events, opts.PeakLimit)

	var parsed []models.Comment
	hasComments := len(in.Comments.Columns) > 0
	if hasComments {
		commentMapping, err := schema.Detect(in.Comments.Columns, schema.CommentsProfile)
		if err != nil {
			return nil, err
		}
		parsed, err = comments.Extract(in.Comments, commentMapping)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classification := comments.NewClassifier(nil, opts.ExampleLimit).Classify(parsed)

	logrus.Debugf("Analyzed %d rows, %d comments, %d events", s.Len(), len(parsed), len(events))

	return report.Assemble(report.Input{
		ID:              uuid.NewString(),
		SessionID:       in.SessionID,
		Series:          s,
		Peaks:           correlated,
		Classification:  classification,
		HasComments:     hasComments,
		Events:          events,
		TopKeywords:     comments.TopKeywords(parsed, opts.KeywordCount),
		Timing:          comments.Timing(parsed),
		Recommendations: report.Recommend(s, len(detected[models.FieldClicks]), classification),
		GeneratedAt:     time.Now().UTC(),
	}), nil
}

// duration is the broadcast length in minutes implied by the series.
func duration(s *models.Series) int {
	last := -1
	for _, m := range s.Minutes {
		if m > last {
			last = m
		}
	}
	return last + 1
}

// Validate checks that artifacts are usable without running the analysis.
func Validate(in Inputs) error {
	if _, err := schema.Detect(in.Metrics.Columns, schema.MetricsProfile); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if len(in.Comments.Columns) > 0 {
		if _, err := schema.Detect(in.Comments.Columns, schema.CommentsProfile); err != nil {
			return fmt.Errorf("comments: %w", err)
		}
	}
	return nil
}
