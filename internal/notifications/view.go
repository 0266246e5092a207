package notifications

import (
	"fmt"
	"time"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

type fact struct {
	Name  string
	Value string
}

type peakLine struct {
	Metric   string
	Minute   int
	Increase float64
	Event    string
}

// reportView is the ordered, display-ready form of a report shared by every channel.
type reportView struct {
	SessionID       string
	GeneratedAt     time.Time
	Duration        int
	TotalComments   int
	Stats           []fact
	Peaks           []peakLine
	Categories      []fact
	Recommendations *models.Recommendations
}

var statLabels = []struct {
	key    string
	label  string
	format string
}{
	{models.StatMaxViewers, "最大視聴者数", "%.0f"},
	{models.StatAvgViewers, "平均視聴者数", "%.1f"},
	{models.StatTotalLikes, "いいね合計", "%.0f"},
	{models.StatTotalClicks, "商品クリック合計", "%.0f"},
	{models.StatCTR, "CTR", "%.3f"},
	{models.StatViewerRetention, "視聴維持率", "%.2f"},
	{models.StatEngagementRate, "エンゲージメント率", "%.3f"},
}

var metricLabels = map[models.Metric]string{
	models.FieldViewers:  "視聴者数",
	models.FieldLikes:    "いいね",
	models.FieldComments: "コメント数",
	models.FieldClicks:   "商品クリック",
}

// Peaks of each metric beyond this are left out of notifications.
const peaksPerMetric = 3

func newReportView(report *models.AnalysisReport) reportView {
	view := reportView{
		SessionID:       report.SessionID,
		GeneratedAt:     report.GeneratedAt,
		Duration:        report.VideoDuration,
		TotalComments:   report.CommentAnalysis.Total,
		Recommendations: report.Recommendations,
	}
	if view.SessionID == "" {
		view.SessionID = report.ID
	}

	for _, s := range statLabels {
		if v, ok := report.SummaryStats[s.key]; ok {
			view.Stats = append(view.Stats, fact{Name: s.label, Value: fmt.Sprintf(s.format, v)})
		}
	}

	for _, metric := range models.Metrics {
		peaks := report.PeakAnalysis[metric]
		if len(peaks) > peaksPerMetric {
			peaks = peaks[:peaksPerMetric]
		}
		for _, p := range peaks {
			view.Peaks = append(view.Peaks, peakLine{
				Metric:   metricLabels[metric],
				Minute:   p.Minute,
				Increase: p.Increase,
				Event:    p.EventDescription,
			})
		}
	}

	for _, c := range models.Categories {
		view.Categories = append(view.Categories, fact{
			Name:  c.Label(),
			Value: fmt.Sprintf("%d", report.CommentAnalysis.Categories[c]),
		})
	}

	return view
}
