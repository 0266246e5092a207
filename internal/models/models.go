package models

import (
	"fmt"
	"time"
)

// Canonical field names that raw spreadsheet columns are mapped onto.
type Field string

const (
	FieldTime        Field = "time_value"
	FieldViewers     Field = "viewers"
	FieldLikes       Field = "likes"
	FieldComments    Field = "comments"
	FieldClicks      Field = "clicks"
	FieldCommentText Field = "comment_text"
	FieldUser        Field = "user"
)

// Metric is a numeric canonical field.
type Metric = Field

// Metrics lists the numeric fields in report order.
var Metrics = []Metric{FieldViewers, FieldLikes, FieldComments, FieldClicks}

// TimeUnit tells the normalizer how to turn a time column into minutes.
type TimeUnit string

const (
	UnitNone    TimeUnit = ""
	UnitMinutes TimeUnit = "minutes"
	UnitSeconds TimeUnit = "seconds"
	UnitClock   TimeUnit = "clock"
)

// RawTable is a loaded spreadsheet. Cells are kept as strings; blanks are "".
type RawTable struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Len returns the number of rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// FieldMatch records which column feeds a canonical field.
type FieldMatch struct {
	Column   string   `json:"column"`
	Unit     TimeUnit `json:"unit,omitempty"`
	Priority int      `json:"priority"`
}

// FieldMapping maps canonical fields to the source column chosen for each.
type FieldMapping map[Field]FieldMatch

// Column returns the source column for field, if one was detected.
func (m FieldMapping) Column(field Field) (string, bool) {
	match, ok := m[field]
	return match.Column, ok
}

// Has reports whether field was detected.
func (m FieldMapping) Has(field Field) bool {
	_, ok := m[field]
	return ok
}

// Series is the canonical, minute-indexed metric table.
type Series struct {
	Minutes []int                `json:"minutes"`
	Metrics map[Metric][]float64 `json:"metrics"`
}

// Values returns the series for metric, or nil if the metric was not present.
func (s *Series) Values(metric Metric) []float64 {
	if s == nil {
		return nil
	}
	return s.Metrics[metric]
}

// Has reports whether metric was present in the source data.
func (s *Series) Has(metric Metric) bool {
	if s == nil {
		return false
	}
	_, ok := s.Metrics[metric]
	return ok
}

// Len returns the number of rows in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Minutes)
}

// Peak is a point whose increase over the previous point crossed the threshold.
type Peak struct {
	Minute   int     `json:"minute"`
	Value    float64 `json:"value"`
	Increase float64 `json:"increase"`
}

// NoEventDescription is attached to peaks with no timeline event at their minute.
const NoEventDescription = "イベント情報なし"

// CorrelatedPeak is a peak annotated with the timeline event sharing its minute.
type CorrelatedPeak struct {
	Minute           int     `json:"minute"`
	Value            float64 `json:"value"`
	Increase         float64 `json:"increase"`
	EventDescription string  `json:"event_description"`
}

// TimelineEvent describes what happened in the broadcast at a given minute.
type TimelineEvent struct {
	Minute      int    `json:"minute"`
	Description string `json:"description"`
	SceneType   string `json:"scene_type,omitempty"`
}

// Comment is one viewer comment.
type Comment struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Minute    int    `json:"-"`
	HasMinute bool   `json:"-"`
}

// Category is a comment intent label.
type Category string

const (
	CategoryPurchaseIntent Category = "purchase_intent"
	CategoryQuestion       Category = "question"
	CategorySurprise       Category = "surprise"
	CategoryAnticipation   Category = "anticipation"
	CategoryGreeting       Category = "greeting"
	CategoryOther          Category = "other"
)

// Categories lists every category in classification priority order, other last.
var Categories = []Category{
	CategoryPurchaseIntent,
	CategoryQuestion,
	CategorySurprise,
	CategoryAnticipation,
	CategoryGreeting,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryPurchaseIntent: "購入意志",
	CategoryQuestion:       "質問",
	CategorySurprise:       "驚き",
	CategoryAnticipation:   "ワクワク・期待",
	CategoryGreeting:       "挨拶",
	CategoryOther:          "その他",
}

// Label returns the display name used in notifications.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ClassificationResult partitions a comment set into categories.
type ClassificationResult struct {
	Categories map[Category]int       `json:"categories"`
	Examples   map[Category][]Comment `json:"examples"`
	Details    map[Category][]Comment `json:"-"`
	Total      int                    `json:"total"`
}

// KeywordCount is a token and how often it occurred.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// CommentAnalysis is the comment section of a report.
type CommentAnalysis struct {
	Categories  map[Category]int       `json:"categories"`
	Examples    map[Category][]Comment `json:"examples"`
	Total       int                    `json:"total"`
	TopKeywords []KeywordCount         `json:"top_keywords,omitempty"`
	Timing      map[int]int            `json:"timing,omitempty"`
}

// Recommendations is presentation text derived from a finished analysis.
type Recommendations struct {
	GoodPoints   []string `json:"good_points"`
	Improvements []string `json:"improvements"`
	NextActions  []string `json:"next_actions"`
}

// Summary statistic keys.
const (
	StatMaxViewers          = "max_viewers"
	StatAvgViewers          = "avg_viewers"
	StatTotalLikes          = "total_likes"
	StatTotalCommentsMetric = "total_comments_metric"
	StatTotalClicks         = "total_clicks"
	StatTotalCommentsActual = "total_comments_actual"
	StatCTR                 = "ctr"
	StatViewerRetention     = "viewer_retention"
	StatEngagementRate      = "engagement_rate"
)

// AnalysisReport is the result of one analysis run. It is not modified after assembly.
type AnalysisReport struct {
	ID              string                      `json:"id"`
	SessionID       string                      `json:"session_id,omitempty"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	SummaryStats    map[string]float64          `json:"summary_stats"`
	PeakAnalysis    map[Metric][]CorrelatedPeak `json:"peak_analysis"`
	CommentAnalysis CommentAnalysis             `json:"comment_analysis"`
	Recommendations *Recommendations            `json:"recommendations,omitempty"`
	VideoDuration   int                         `json:"video_duration"`
}

// EmptyDataError reports an artifact with no usable rows after cleaning.
type EmptyDataError struct {
	Artifact string
}

func (e *EmptyDataError) Error() string {
	return fmt.Sprintf("%s: no usable rows", e.Artifact)
}

// Alert reports an analysis run that failed.
type Alert struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
