package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTable(columns []string, rows ...[]string) models.RawTable {
	table := models.RawTable{Columns: columns}
	for _, row := range rows {
		m := make(map[string]string, len(columns))
		for i, c := range columns {
			m[c] = row[i]
		}
		table.Rows = append(table.Rows, m)
	}
	return table
}

func metricsTable() models.RawTable {
	return rawTable([]string{"経過時間(分)", "視聴者数", "いいね"},
		[]string{"0", "100", "5"},
		[]string{"1", "150", "8"},
		[]string{"5", "400", "40"},
	)
}

func commentsTable() models.RawTable {
	return rawTable([]string{"経過秒", "ユーザー名", "コメント"},
		[]string{"12", "taro", "こんにちは"},
		[]string{"75", "hanako", "これ買います！"},
		[]string{"80", "jiro", "サイズは？"},
		[]string{"300", "", "すごい！"},
	)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	events := []models.TimelineEvent{{Minute: 5, Description: "限定価格発表"}}

	result, err := Analyze(context.Background(), Inputs{
		SessionID: "s1",
		Metrics:   metricsTable(),
		Comments:  commentsTable(),
		Events:    events,
	}, DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "s1", result.SessionID)

	viewerPeaks := result.PeakAnalysis[models.FieldViewers]
	require.NotEmpty(t, viewerPeaks)
	last := viewerPeaks[len(viewerPeaks)-1]
	assert.Equal(t, 5, last.Minute)
	assert.Equal(t, 250.0, last.Increase)
	assert.Equal(t, "限定価格発表", last.EventDescription)

	assert.Equal(t, 400.0, result.SummaryStats[models.StatMaxViewers])
	assert.Equal(t, 53.0, result.SummaryStats[models.StatTotalLikes])
	assert.Equal(t, 4.0, result.SummaryStats[models.StatTotalCommentsActual])

	ca := result.CommentAnalysis
	assert.Equal(t, 4, ca.Total)
	assert.Equal(t, 1, ca.Categories[models.CategoryPurchaseIntent])
	assert.Equal(t, "これ買います！", ca.Examples[models.CategoryPurchaseIntent][0].Text)
	assert.Equal(t, 1, ca.Categories[models.CategoryQuestion])
	assert.Equal(t, 1, ca.Categories[models.CategoryGreeting])
	assert.Equal(t, 1, ca.Categories[models.CategorySurprise])
	assert.Equal(t, map[int]int{0: 1, 1: 2, 5: 1}, ca.Timing)

	require.NotNil(t, result.Recommendations)
	assert.NotEmpty(t, result.Recommendations.NextActions)
	assert.Equal(t, 1, result.VideoDuration)
}

func TestAnalyze_PeaksWithoutEvents(t *testing.T) {
	result, err := Analyze(context.Background(), Inputs{Metrics: metricsTable()}, DefaultOptions())
	require.NoError(t, err)

	for _, peaks := range result.PeakAnalysis {
		for _, p := range peaks {
			assert.Equal(t, models.NoEventDescription, p.EventDescription)
		}
	}
	assert.Equal(t, 0, result.CommentAnalysis.Total)
	assert.Len(t, result.CommentAnalysis.Categories, len(models.Categories))
}

func TestAnalyze_WithoutCommentLog(t *testing.T) {
	metrics := rawTable([]string{"分", "コメント数"},
		[]string{"0", "40"},
		[]string{"1", "60"},
	)

	result, err := Analyze(context.Background(), Inputs{Metrics: metrics}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.SummaryStats[models.StatTotalCommentsMetric])
	_, ok := result.SummaryStats[models.StatTotalCommentsActual]
	assert.False(t, ok, "actual count is omitted when no comment log was supplied")
	assert.Empty(t, result.CommentAnalysis.TopKeywords)
	assert.Empty(t, result.CommentAnalysis.Timing)
	assert.Len(t, result.CommentAnalysis.Categories, len(models.Categories))
}

func TestAnalyze_SyntheticTimeline(t *testing.T) {
	opts := DefaultOptions()
	opts.SyntheticTimeline = true

	result, err := Analyze(context.Background(), Inputs{Metrics: metricsTable()}, opts)
	require.NoError(t, err)

	viewerPeaks := result.PeakAnalysis[models.FieldViewers]
	require.NotEmpty(t, viewerPeaks)
	assert.Equal(t, "5分目のシーン（商品紹介（前半））", viewerPeaks[len(viewerPeaks)-1].EventDescription)
	assert.Equal(t, 6, result.VideoDuration)
}

func TestAnalyze_SchemaErrors(t *testing.T) {
	_, err := Analyze(context.Background(), Inputs{
		Metrics: rawTable([]string{"foo", "bar"}, []string{"1", "2"}),
	}, DefaultOptions())
	var schemaErr *schema.SchemaError
	assert.True(t, errors.As(err, &schemaErr))

	_, err = Analyze(context.Background(), Inputs{
		Metrics:  metricsTable(),
		Comments: rawTable([]string{"id"}, []string{"1"}),
	}, DefaultOptions())
	assert.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "comments", schemaErr.Profile)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, Inputs{Metrics: metricsTable()}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
