package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/livecommerce/stream-analyzer/internal/analysis"
	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/notifications"
	"github.com/livecommerce/stream-analyzer/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	metricsCSV  = "経過時間(分),視聴者数,いいね\n0,100,5\n1,150,8\n5,400,40\n"
	commentsCSV = "コメント,ユーザー\nこれ買います！,hanako\n色は？,taro\n"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.LocalStorageDir = t.TempDir()

	store, err := storage.NewLocalStorage(cfg.LocalStorageDir)
	require.NoError(t, err)

	service := analysis.NewService(cfg, store, nil, notifications.NewService(cfg))
	server := httptest.NewServer(NewRouter(service, cfg.MaxUploadMB))
	t.Cleanup(server.Close)
	return server
}

func multipartBody(t *testing.T, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, file := range files {
		part, err := writer.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func upload(t *testing.T, server *httptest.Server, files map[string][2]string) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, files)
	resp, err := http.Post(server.URL+"/api/upload", contentType, body)
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestUploadAnalyzeReport(t *testing.T) {
	server := newTestServer(t)

	resp := upload(t, server, map[string][2]string{
		"data":     {"metrics.csv", metricsCSV},
		"comments": {"comments.csv", commentsCSV},
		"events":   {"events.json", `[{"minute": 5, "description": "限定価格発表"}]`},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	sessionID := created["session_id"]
	require.NotEmpty(t, sessionID)

	resp, err := http.Get(server.URL + "/api/report/" + sessionID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(server.URL+"/api/analyze/"+sessionID, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.AnalysisReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, sessionID, result.SessionID)
	assert.Equal(t, 1, result.CommentAnalysis.Categories[models.CategoryPurchaseIntent])
	assert.Equal(t, 1, result.CommentAnalysis.Categories[models.CategoryQuestion])

	resp, err = http.Get(server.URL + "/api/report/" + sessionID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.AnalysisReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	assert.Equal(t, result.ID, stored.ID)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var metrics analysis.Metrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&metrics))
	assert.Equal(t, 1, metrics.TotalRuns)
}

func TestUpload_Errors(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name     string
		files    map[string][2]string
		expected int
	}{
		{
			name:     "Missing data file",
			files:    map[string][2]string{"comments": {"c.csv", commentsCSV}},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unsupported format",
			files:    map[string][2]string{"data": {"video.mp4", "binary"}},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "Unrecognized columns",
			files:    map[string][2]string{"data": {"m.csv", "foo,bar\n1,2\n"}},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "Header only",
			files:    map[string][2]string{"data": {"m.csv", "視聴者数\n"}},
			expected: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, server, tt.files)
			defer resp.Body.Close()
			assert.Equal(t, tt.expected, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalyze_UnknownSession(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/analyze/20260101-000000-nope", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReports_IndexDisabled(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/reports")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/reports?limit=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
