package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/livecommerce/stream-analyzer/internal/storage"
	"github.com/sirupsen/logrus"
)

// PurgeBefore deletes every session created before cutoff and returns how many
// were removed. Objects whose session ID carries no timestamp are left alone.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	names, err := s.storage.List("sessions/")
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	expired := make(map[string][]string)
	var order []string
	for _, name := range names {
		id, ok := storage.SessionOf(name)
		if !ok {
			continue
		}
		created, ok := SessionTime(id)
		if !ok || !created.Before(cutoff) {
			continue
		}
		if _, seen := expired[id]; !seen {
			order = append(order, id)
		}
		expired[id] = append(expired[id], name)
	}

	purged := 0
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		for _, name := range expired[id] {
			if err := s.storage.Delete(name); err != nil {
				return purged, fmt.Errorf("failed to purge session %s: %w", id, err)
			}
		}
		if s.index != nil {
			if err := s.index.DeleteSession(ctx, id); err != nil {
				logrus.Errorf("Failed to drop index rows of %s: %v", id, err)
			}
		}
		purged++
	}

	s.mu.Lock()
	s.metrics.PurgedSessions += purged
	s.mu.Unlock()

	return purged, nil
}

// RunRetention purges sessions older than the configured retention period.
func (s *Service) RunRetention() error {
	if s.config.RetentionDays <= 0 {
		logrus.Debug("Retention disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.RetentionDays)
	purged, err := s.PurgeBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logrus.Infof("Retention sweep removed %d sessions created before %s", purged, cutoff.Format(time.RFC3339))
	return nil
}
