package timeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/livecommerce/stream-analyzer/internal/loader"
	"github.com/livecommerce/stream-analyzer/internal/models"
)

// HTTPSource fetches events from a remote timeline service
type HTTPSource struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPSource creates a source for GET {baseURL}/sessions/{id}/events
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		client: resty.New().
			SetTimeout(30*time.Second).
			SetRetryCount(2).
			SetHeader("User-Agent", "Stream-Analyzer/1.0").
			SetHeader("Accept", "application/json"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *HTTPSource) GetName() string {
	return "http"
}

func (h *HTTPSource) IsEnabled() bool {
	return h.baseURL != ""
}

func (h *HTTPSource) Events(ctx context.Context, sessionID string) ([]models.TimelineEvent, error) {
	if !h.IsEnabled() {
		return nil, ErrNoEvents
	}

	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/sessions/%s/events", h.baseURL, url.PathEscape(sessionID)))
	if err != nil {
		return nil, fmt.Errorf("timeline request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, ErrNoEvents
	default:
		return nil, fmt.Errorf("timeline service returned status %d", resp.StatusCode())
	}

	events, err := loader.ParseEvents(resp.Body())
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}
