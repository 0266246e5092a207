package scheduler

import (
	"fmt"

	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionRunner purges expired sessions
type RetentionRunner interface {
	RunRetention() error
}

// Service handles scheduling of maintenance tasks
type Service struct {
	config    *config.Config
	retention RetentionRunner
	cron      *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, retention RetentionRunner) *Service {
	return &Service{
		config:    cfg,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the retention sweep and starts the cron loop
func (s *Service) Start() error {
	if s.config.RetentionDays <= 0 {
		logrus.Info("Retention disabled, scheduler not started")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.RetentionSchedule, func() {
		logrus.Info("Starting scheduled retention sweep")
		if err := s.retention.RunRetention(); err != nil {
			logrus.Errorf("Scheduled retention sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid RETENTION_SCHEDULE %q: %w", s.config.RetentionSchedule, err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, retention sweep at %q keeping %d days", s.config.RetentionSchedule, s.config.RetentionDays)
	return nil
}

// Entries returns the number of scheduled jobs
func (s *Service) Entries() int {
	return len(s.cron.Entries())
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
