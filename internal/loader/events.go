package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

type eventDocument struct {
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	Minute          int    `json:"minute"`
	Description     string `json:"description"`
	SceneType       string `json:"scene_type"`
	InferredContext *struct {
		SceneType string `json:"scene_type"`
	} `json:"inferred_context"`
}

// ParseEvents reads timeline events from either a JSON array or a video metadata
// document with an "events" key. Events are returned sorted by minute.
func ParseEvents(data []byte) ([]models.TimelineEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw []rawEvent
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse timeline events: %w", err)
		}
	} else {
		var doc eventDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse timeline document: %w", err)
		}
		raw = doc.Events
	}

	events := make([]models.TimelineEvent, 0, len(raw))
	for _, e := range raw {
		if e.Minute < 0 {
			continue
		}
		event := models.TimelineEvent{
			Minute:      e.Minute,
			Description: e.Description,
			SceneType:   e.SceneType,
		}
		if event.SceneType == "" && e.InferredContext != nil {
			event.SceneType = e.InferredContext.SceneType
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})
	return events, nil
}
