package timeline

import (
	"context"
	"errors"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

// Chain asks each source in turn and returns the first non-empty timeline.
// A failing source is logged and skipped.
type Chain []Source

func (c Chain) GetName() string {
	return "chain"
}

func (c Chain) Events(ctx context.Context, sessionID string) ([]models.TimelineEvent, error) {
	for _, source := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		events, err := source.Events(ctx, sessionID)
		if err == nil && len(events) > 0 {
			logrus.Debugf("Timeline for %s from %s: %d events", sessionID, source.GetName(), len(events))
			return events, nil
		}
		if err != nil && !errors.Is(err, ErrNoEvents) {
			logrus.Warnf("Timeline source %s failed for %s: %v", source.GetName(), sessionID, err)
		}
	}
	return nil, ErrNoEvents
}
