package loader

import (
	"errors"
	"testing"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
)

func TestLoad_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("経過時間(分),視聴者数,いいね\n0,100,5\n1,150,8\n\n5,400,40\n")...)

	table, err := Load("data.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"経過時間(分)", "視聴者数", "いいね"}, table.Columns)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, "400", table.Rows[2]["視聴者数"])
}

func TestLoad_ShiftJISCSV(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("コメント,ユーザー\nこんにちは,taro\n"))
	require.NoError(t, err)

	table, err := Load("comments.CSV", encoded)
	require.NoError(t, err)

	assert.Equal(t, []string{"コメント", "ユーザー"}, table.Columns)
	assert.Equal(t, "こんにちは", table.Rows[0]["コメント"])
}

func TestLoad_RaggedRowsAndDuplicateHeaders(t *testing.T) {
	table, err := Load("x.csv", []byte("a,a,,b\n1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a.1", "column_3", "b"}, table.Columns)
	assert.Equal(t, map[string]string{"a": "1", "a.1": "2", "column_3": "", "b": ""}, table.Rows[0])
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"minute", "viewers"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{0, 120}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{1, 180}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Load("data.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"minute", "viewers"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "180", table.Rows[1]["viewers"])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("video.mp4", []byte("x"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load("data.csv", []byte("viewers\n"))
	var emptyErr *models.EmptyDataError
	assert.True(t, errors.As(err, &emptyErr))

	_, err = Load("data.xlsx", []byte("not a zip"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.csv"))
	assert.True(t, Supported("A.XLSX"))
	assert.False(t, Supported("a.xls"))
	assert.False(t, Supported("a.mp4"))
}

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []models.TimelineEvent
	}{
		{
			name: "Plain list",
			data: `[{"minute": 3, "description": "実演"}, {"minute": 1, "description": "導入"}]`,
			expected: []models.TimelineEvent{
				{Minute: 1, Description: "導入"},
				{Minute: 3, Description: "実演"},
			},
		},
		{
			name: "Video metadata document",
			data: `{"fps": 30, "events": [{"minute": 0, "description": "0分目のシーン", "inferred_context": {"scene_type": "オープニング"}}]}`,
			expected: []models.TimelineEvent{
				{Minute: 0, Description: "0分目のシーン", SceneType: "オープニング"},
			},
		},
		{
			name:     "Empty",
			data:     "  ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvents([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseEvents([]byte("{broken"))
	assert.Error(t, err)
}
