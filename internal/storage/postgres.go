package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// ReportSummary is one row of the report index
type ReportSummary struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	MaxViewers     float64   `json:"max_viewers"`
	TotalClicks    float64   `json:"total_clicks"`
	TotalComments  int       `json:"total_comments"`
	PurchaseIntent int       `json:"purchase_intent"`
}

// ReportIndex records finished reports for listing and retention
type ReportIndex interface {
	Save(ctx context.Context, report *models.AnalysisReport) error
	Recent(ctx context.Context, limit int) ([]ReportSummary, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}

// PostgresIndex keeps the report index in PostgreSQL.
type PostgresIndex struct {
	db *sql.DB
}

var _ ReportIndex = (*PostgresIndex)(nil)

// NewPostgresIndex opens a connection, waits for the server and runs the
// schema migration.
func NewPostgresIndex(dsn string) (*PostgresIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	idx := &PostgresIndex{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return idx, nil
}

func (p *PostgresIndex) migrate() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id              TEXT PRIMARY KEY,
			session_id      TEXT        NOT NULL,
			generated_at    TIMESTAMPTZ NOT NULL,
			max_viewers     NUMERIC     NOT NULL DEFAULT 0,
			total_clicks    NUMERIC     NOT NULL DEFAULT 0,
			total_comments  INTEGER     NOT NULL DEFAULT 0,
			purchase_intent INTEGER     NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_analysis_reports_session   ON analysis_reports(session_id);
		CREATE INDEX IF NOT EXISTS idx_analysis_reports_generated ON analysis_reports(generated_at);
	`)
	return err
}

// Save upserts the summary of a report.
func (p *PostgresIndex) Save(ctx context.Context, report *models.AnalysisReport) error {
	s := Summarize(report)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO analysis_reports (id, session_id, generated_at, max_viewers, total_clicks, total_comments, purchase_intent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			generated_at    = EXCLUDED.generated_at,
			max_viewers     = EXCLUDED.max_viewers,
			total_clicks    = EXCLUDED.total_clicks,
			total_comments  = EXCLUDED.total_comments,
			purchase_intent = EXCLUDED.purchase_intent
	`, s.ID, s.SessionID, s.GeneratedAt, s.MaxViewers, s.TotalClicks, s.TotalComments, s.PurchaseIntent)
	if err != nil {
		return fmt.Errorf("postgres: save report %s: %w", s.ID, err)
	}
	return nil
}

// Recent returns the newest summaries first.
func (p *PostgresIndex) Recent(ctx context.Context, limit int) ([]ReportSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, session_id, generated_at, max_viewers, total_clicks, total_comments, purchase_intent
		FROM analysis_reports
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.GeneratedAt, &s.MaxViewers, &s.TotalClicks, &s.TotalComments, &s.PurchaseIntent); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSession drops every indexed report of a session.
func (p *PostgresIndex) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM analysis_reports WHERE session_id = $1", sessionID); err != nil {
		return fmt.Errorf("postgres: delete session %s: %w", sessionID, err)
	}
	return nil
}

func (p *PostgresIndex) Close() error {
	return p.db.Close()
}

// Summarize extracts the indexed columns from a report.
func Summarize(report *models.AnalysisReport) ReportSummary {
	return ReportSummary{
		ID:             report.ID,
		SessionID:      report.SessionID,
		GeneratedAt:    report.GeneratedAt,
		MaxViewers:     report.SummaryStats[models.StatMaxViewers],
		TotalClicks:    report.SummaryStats[models.StatTotalClicks],
		TotalComments:  report.CommentAnalysis.Total,
		PurchaseIntent: report.CommentAnalysis.Categories[models.CategoryPurchaseIntent],
	}
}
