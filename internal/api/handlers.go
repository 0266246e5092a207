// Package api exposes the analysis service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/livecommerce/stream-analyzer/internal/analysis"
	"github.com/livecommerce/stream-analyzer/internal/loader"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/schema"
	"github.com/livecommerce/stream-analyzer/internal/storage"
	"github.com/sirupsen/logrus"
)

const defaultReportLimit = 20

// Handler serves the HTTP API
type Handler struct {
	service        *analysis.Service
	maxUploadBytes int64
}

// NewRouter registers every route on a new router
func NewRouter(service *analysis.Service, maxUploadMB int) *mux.Router {
	h := &Handler{
		service:        service,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.metrics).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/upload", h.upload).Methods(http.MethodPost)
	apiRouter.HandleFunc("/analyze/{session}", h.analyze).Methods(http.MethodPost)
	apiRouter.HandleFunc("/report/{session}", h.report).Methods(http.MethodGet)
	apiRouter.HandleFunc("/reports", h.reports).Methods(http.MethodGet)

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.service.GetMetrics()))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload: %w", err))
		return
	}

	var up analysis.Upload
	var err error
	if up.DataName, up.Data, err = formFile(r, "data"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if up.CommentsName, up.Comments, err = formFile(r, "comments"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, up.Events, err = formFile(r, "events"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.service.CreateSession(r.Context(), up)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session"]

	result, err := h.service.RunSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session"]

	result, err := h.service.GetReport(sessionID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	summaries, err := h.service.RecentReports(r.Context(), limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if summaries == nil {
		summaries = []storage.ReportSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// formFile reads an optional multipart file. A missing field returns empty values.
func formFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return header.Filename, data, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var schemaErr *schema.SchemaError
	var emptyErr *models.EmptyDataError
	switch {
	case errors.Is(err, analysis.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrIndexDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, loader.ErrUnsupportedFormat),
		errors.As(err, &schemaErr),
		errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logrus.Errorf("Request failed: %v", err)
	} else {
		logrus.Debugf("Request rejected: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
