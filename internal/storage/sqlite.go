package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/ashita-ai/kansa/internal/model"
)

// SQLite archives reports in a local SQLite file. It suits single-user CLI
// use where running Postgres would be overkill.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (creating if needed) the database file at path.
func NewSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("storage: sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}
	return &SQLite{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveReport inserts a completed report. Saving the same ID twice fails.
func (s *SQLite) SaveReport(ctx context.Context, r model.Report) error {
	row, err := newReportRow(r)
	if err != nil {
		return err
	}
	var avg sql.NullFloat64
	if row.averageScore != nil {
		avg = sql.NullFloat64{Float64: *row.averageScore, Valid: true}
	}
	err = withRetry(ctx, saveRetries, saveRetryDelay, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO audit_reports (id, url, source_kind, state, stages, average_score, started_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID.String(), row.url, row.sourceKind, string(row.state), string(row.stages), avg,
			formatTime(r.StartedAt), formatTime(r.CompletedAt),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("storage: insert report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads one report by ID.
func (s *SQLite) GetReport(ctx context.Context, id uuid.UUID) (model.Report, error) {
	var (
		state, stages          string
		startedAt, completedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, stages, started_at, completed_at FROM audit_reports WHERE id = ?`, id.String(),
	).Scan(&state, &stages, &startedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, fmt.Errorf("storage: report %s: %w", id, ErrNotFound)
		}
		return model.Report{}, fmt.Errorf("storage: get report %s: %w", id, err)
	}

	r := model.Report{ID: id}
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return model.Report{}, err
	}
	if r.CompletedAt, err = parseTime(completedAt); err != nil {
		return model.Report{}, err
	}
	if err := decodeReport(&r, []byte(state), []byte(stages)); err != nil {
		return model.Report{}, err
	}
	return r, nil
}

// ListReports returns up to limit report summaries, newest first.
func (s *SQLite) ListReports(ctx context.Context, limit int) ([]model.ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, source_kind, average_score, completed_at
		 FROM audit_reports ORDER BY completed_at DESC, id LIMIT ?`, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ReportSummary
	for rows.Next() {
		var (
			sum                 model.ReportSummary
			id, kind, completed string
			avg                 sql.NullFloat64
		)
		if err := rows.Scan(&id, &sum.URL, &kind, &avg, &completed); err != nil {
			return nil, fmt.Errorf("storage: scan report summary: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("storage: parse report id %q: %w", id, err)
		}
		if sum.CreatedAt, err = parseTime(completed); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			sum.AverageScore = &v
		}
		sum.SourceKind = model.SourceKind(kind)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
