package timeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/livecommerce/stream-analyzer/internal/loader"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/storage"
)

// StoredSource reads the events.json uploaded with the session
type StoredSource struct {
	storage storage.StorageInterface
}

// NewStoredSource creates a source backed by session storage
func NewStoredSource(s storage.StorageInterface) *StoredSource {
	return &StoredSource{storage: s}
}

func (s *StoredSource) GetName() string {
	return "stored"
}

func (s *StoredSource) Events(ctx context.Context, sessionID string) ([]models.TimelineEvent, error) {
	data, err := s.storage.Retrieve(storage.SessionKey(sessionID, storage.EventsObject))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoEvents
		}
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events, err := loader.ParseEvents(data)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	return events, nil
}
