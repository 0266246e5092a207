package timeline

import (
	"context"
	"errors"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// ErrNoEvents is returned when a source has no timeline for the session.
var ErrNoEvents = errors.New("no timeline events")

// Source interface defines the contract for timeline event providers
type Source interface {
	GetName() string
	Events(ctx context.Context, sessionID string) ([]models.TimelineEvent, error)
}
