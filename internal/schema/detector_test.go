package schema

import (
	"errors"
	"testing"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_MetricsProfile(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		expected map[models.Field]models.FieldMatch
	}{
		{
			name:    "Japanese export",
			columns: []string{"経過時間(分)", "視聴者数", "いいね"},
			expected: map[models.Field]models.FieldMatch{
				models.FieldTime:    {Column: "経過時間(分)", Unit: models.UnitMinutes, Priority: 9},
				models.FieldViewers: {Column: "視聴者数", Priority: 9},
				models.FieldLikes:   {Column: "いいね", Priority: 9},
			},
		},
		{
			name:    "English export with elapsed seconds",
			columns: []string{"elapsed_time", "Concurrent Viewers", "Likes", "Chat Messages", "Product Clicks"},
			expected: map[models.Field]models.FieldMatch{
				models.FieldTime:     {Column: "elapsed_time", Unit: models.UnitSeconds, Priority: 6},
				models.FieldViewers:  {Column: "Concurrent Viewers", Priority: 9},
				models.FieldLikes:    {Column: "Likes", Priority: 9},
				models.FieldComments: {Column: "Chat Messages", Priority: 7},
				models.FieldClicks:   {Column: "Product Clicks", Priority: 9},
			},
		},
		{
			name:    "Wall clock timestamps",
			columns: []string{"timestamp", "viewers"},
			expected: map[models.Field]models.FieldMatch{
				models.FieldTime:    {Column: "timestamp", Unit: models.UnitClock, Priority: 5},
				models.FieldViewers: {Column: "viewers", Priority: 9},
			},
		},
		{
			name:    "Full-width labels",
			columns: []string{"ＶＩＥＷＥＲＳ", "ｃｌｉｃｋｓ"},
			expected: map[models.Field]models.FieldMatch{
				models.FieldViewers: {Column: "ＶＩＥＷＥＲＳ", Priority: 9},
				models.FieldClicks:  {Column: "ｃｌｉｃｋｓ", Priority: 9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := Detect(tt.columns, MetricsProfile)
			require.NoError(t, err)
			assert.Equal(t, models.FieldMapping(tt.expected), mapping)
		})
	}
}

func TestDetect_CommentsProfile(t *testing.T) {
	columns := []string{"user_name", "comment", "original_text", "elapsed_time"}

	mapping, err := Detect(columns, CommentsProfile)
	require.NoError(t, err)

	text, ok := mapping.Column(models.FieldCommentText)
	require.True(t, ok)
	assert.Equal(t, "original_text", text, "more specific pattern outranks the generic one")

	assert.Equal(t, models.FieldMatch{Column: "elapsed_time", Unit: models.UnitSeconds, Priority: 9}, mapping[models.FieldTime])
	assert.Equal(t, "user_name", mapping[models.FieldUser].Column)
}

func TestDetect_TieGoesToFirstColumn(t *testing.T) {
	mapping, err := Detect([]string{"viewers_a", "viewers_b"}, MetricsProfile)
	require.NoError(t, err)
	assert.Equal(t, "viewers_a", mapping[models.FieldViewers].Column)
}

func TestDetect_HigherPriorityBeatsEarlierColumn(t *testing.T) {
	mapping, err := Detect([]string{"視聴", "同時視聴者数"}, MetricsProfile)
	require.NoError(t, err)
	assert.Equal(t, "同時視聴者数", mapping[models.FieldViewers].Column)
}

func TestDetect_ColumnCanFeedSeveralFields(t *testing.T) {
	mapping, err := Detect([]string{"チャットいいね"}, MetricsProfile)
	require.NoError(t, err)
	assert.Equal(t, "チャットいいね", mapping[models.FieldLikes].Column)
	assert.Equal(t, "チャットいいね", mapping[models.FieldComments].Column)
}

func TestDetect_Idempotent(t *testing.T) {
	columns := []string{"時刻", "同時視聴者数", "ハート", "コメント数", "商品クリック"}

	first, err := Detect(columns, MetricsProfile)
	require.NoError(t, err)
	second, err := Detect(columns, MetricsProfile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetect_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		profile Profile
		field   string
	}{
		{
			name:    "Comment log without text column",
			columns: []string{"user", "time"},
			profile: CommentsProfile,
			field:   "comment_text",
		},
		{
			name:    "Metrics without any numeric metric",
			columns: []string{"時間", "メモ"},
			profile: MetricsProfile,
			field:   "viewers|likes|comments|clicks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := Detect(tt.columns, tt.profile)
			assert.Nil(t, mapping)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.Equal(t, tt.columns, schemaErr.Available)
			assert.Contains(t, err.Error(), tt.columns[0])
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "viewers", NormalizeLabel("  ＶＩＥＷＥＲＳ "))
	assert.Equal(t, "コメント", NormalizeLabel("ｺﾒﾝﾄ"))
}
