package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/livecommerce/stream-analyzer/internal/loader"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/notifications"
	"github.com/livecommerce/stream-analyzer/internal/storage"
	"github.com/livecommerce/stream-analyzer/internal/timeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionNotFound is returned for a session with no stored artifacts.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidUpload is returned when an upload is missing a required file.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrIndexDisabled is returned by RecentReports when no report index is configured.
	ErrIndexDisabled = errors.New("report index is not configured")
)

// Object base names of the uploaded artifacts; the extension is kept from the upload.
const (
	dataObject     = "data"
	commentsObject = "comments"
)

const sessionTimeLayout = "20060102-150405"

// Service runs analyses over sessions kept in storage
type Service struct {
	config              *config.Config
	storage             storage.StorageInterface
	index               storage.ReportIndex
	notificationService notifications.NotificationInterface
	timeline            timeline.Source
	options             Options
	metrics             *Metrics
	mu                  sync.RWMutex
}

// Metrics holds service metrics
type Metrics struct {
	TotalRuns         int                     `json:"total_runs"`
	FailedRuns        int                     `json:"failed_runs"`
	LastRun           time.Time               `json:"last_run"`
	LastRunDuration   string                  `json:"last_run_duration"`
	LastSessionID     string                  `json:"last_session_id"`
	CategoryBreakdown map[models.Category]int `json:"category_breakdown"`
	PurgedSessions    int                     `json:"purged_sessions"`
}

// Upload is one broadcast's files as received from a client.
type Upload struct {
	DataName     string
	Data         []byte
	CommentsName string
	Comments     []byte
	Events       []byte
}

// NewService creates a new analysis service. index may be nil.
func NewService(cfg *config.Config, store storage.StorageInterface, index storage.ReportIndex, notificationService notifications.NotificationInterface) *Service {
	sources := timeline.Chain{timeline.NewStoredSource(store)}
	if cfg.TimelineServiceURL != "" {
		sources = append(sources, timeline.NewHTTPSource(cfg.TimelineServiceURL))
	}

	return &Service{
		config:              cfg,
		storage:             store,
		index:               index,
		notificationService: notificationService,
		timeline:            sources,
		options:             OptionsFromConfig(cfg),
		metrics: &Metrics{
			CategoryBreakdown: make(map[models.Category]int),
		},
	}
}

// NewSessionID returns a sortable ID whose prefix records the creation time.
func NewSessionID(now time.Time) string {
	return now.UTC().Format(sessionTimeLayout) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SessionTime parses the creation time back out of a session ID.
func SessionTime(sessionID string) (time.Time, bool) {
	if len(sessionID) < len(sessionTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(sessionTimeLayout, sessionID[:len(sessionTimeLayout)])
	return t, err == nil
}

// CreateSession validates an upload and stores its files under a new session.
func (s *Service) CreateSession(ctx context.Context, up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: data file is required", ErrInvalidUpload)
	}

	in := Inputs{}
	var err error
	if in.Metrics, err = loader.Load(up.DataName, up.Data); err != nil {
		return "", err
	}
	if len(up.Comments) > 0 {
		if in.Comments, err = loader.Load(up.CommentsName, up.Comments); err != nil {
			return "", err
		}
	}
	if len(up.Events) > 0 {
		if _, err := loader.ParseEvents(up.Events); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidUpload, err)
		}
	}
	if err := Validate(in); err != nil {
		return "", err
	}

	id := NewSessionID(time.Now())
	objects := map[string][]byte{
		dataObject + strings.ToLower(path.Ext(up.DataName)): up.Data,
	}
	if len(up.Comments) > 0 {
		objects[commentsObject+strings.ToLower(path.Ext(up.CommentsName))] = up.Comments
	}
	if len(up.Events) > 0 {
		objects[storage.EventsObject] = up.Events
	}

	for name, data := range objects {
		if err := s.storage.Store(storage.SessionKey(id, name), data); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", name, err)
		}
	}

	logrus.Infof("Created session %s with %d files", id, len(objects))
	return id, nil
}

// RunSession loads a stored session, analyzes it, stores the report and sends
// notifications.
func (s *Service) RunSession(ctx context.Context, sessionID string) (*models.AnalysisReport, error) {
	start := time.Now()
	logrus.Infof("Starting analysis of session %s", sessionID)

	in, err := s.loadSession(ctx, sessionID)
	if err != nil {
		s.recordFailure(sessionID, err)
		return nil, err
	}

	result, err := Analyze(ctx, in, s.options)
	if err != nil {
		s.recordFailure(sessionID, err)
		return nil, err
	}

	if err := s.storeReport(result); err != nil {
		s.recordFailure(sessionID, err)
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Save(ctx, result); err != nil {
			logrus.Errorf("Failed to index report %s: %v", result.ID, err)
		}
	}

	if s.notificationService != nil {
		if err := s.notificationService.SendReport(result); err != nil {
			logrus.Errorf("Failed to send report: %v", err)
		}
	}

	s.updateMetrics(result, time.Since(start))
	logrus.Infof("Analysis of session %s completed in %v", sessionID, time.Since(start))
	return result, nil
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (Inputs, error) {
	names, err := s.storage.List(storage.SessionPrefix(sessionID))
	if err != nil {
		return Inputs{}, fmt.Errorf("failed to list session %s: %w", sessionID, err)
	}

	var dataKey, commentsKey string
	for _, name := range names {
		base := path.Base(name)
		switch strings.TrimSuffix(base, path.Ext(base)) {
		case dataObject:
			dataKey = name
		case commentsObject:
			commentsKey = name
		}
	}
	if dataKey == "" {
		return Inputs{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	in := Inputs{SessionID: sessionID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, err := s.loadTable(dataKey)
		in.Metrics = table
		return err
	})
	if commentsKey != "" {
		g.Go(func() error {
			table, err := s.loadTable(commentsKey)
			in.Comments = table
			return err
		})
	}
	g.Go(func() error {
		events, err := s.timeline.Events(gctx, sessionID)
		if err != nil && !errors.Is(err, timeline.ErrNoEvents) {
			return err
		}
		in.Events = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func (s *Service) loadTable(key string) (models.RawTable, error) {
	data, err := s.storage.Retrieve(key)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("failed to retrieve %s: %w", key, err)
	}
	return loader.Load(path.Base(key), data)
}

func (s *Service) storeReport(result *models.AnalysisReport) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return s.storage.Store(storage.SessionKey(result.SessionID, storage.ReportObject), data)
}

// GetReport returns the stored report of a session.
func (s *Service) GetReport(sessionID string) (*models.AnalysisReport, error) {
	data, err := s.storage.Retrieve(storage.SessionKey(sessionID, storage.ReportObject))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}

	var result models.AnalysisReport
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse report of %s: %w", sessionID, err)
	}
	return &result, nil
}

// RecentReports lists indexed reports, newest first.
func (s *Service) RecentReports(ctx context.Context, limit int) ([]storage.ReportSummary, error) {
	if s.index == nil {
		return nil, ErrIndexDisabled
	}
	return s.index.Recent(ctx, limit)
}

func (s *Service) recordFailure(sessionID string, cause error) {
	logrus.Errorf("Analysis of session %s failed: %v", sessionID, cause)

	s.mu.Lock()
	s.metrics.TotalRuns++
	s.metrics.FailedRuns++
	s.metrics.LastRun = time.Now()
	s.metrics.LastSessionID = sessionID
	s.mu.Unlock()

	if s.notificationService == nil || errors.Is(cause, ErrSessionNotFound) {
		return
	}
	alert := &models.Alert{
		SessionID: sessionID,
		Title:     "ライブコマース分析に失敗しました",
		Message:   cause.Error(),
		CreatedAt: time.Now(),
	}
	if err := s.notificationService.SendAlert(alert); err != nil {
		logrus.Errorf("Failed to send alert: %v", err)
	}
}

func (s *Service) updateMetrics(result *models.AnalysisReport, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRuns++
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastSessionID = result.SessionID

	for category, count := range result.CommentAnalysis.Categories {
		s.metrics.CategoryBreakdown[category] += count
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
