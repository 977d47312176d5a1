package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ashita-ai/kansa/internal/model"
)

// PG archives reports in PostgreSQL through a pgxpool.Pool.
type PG struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPG connects to Postgres and verifies the connection.
func NewPG(ctx context.Context, dsn string, logger *slog.Logger) (*PG, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse pool DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping pool: %w", err)
	}

	return &PG{pool: pool, logger: logger}, nil
}

// Ping checks connectivity to the database.
func (db *PG) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (db *PG) Close() error {
	db.pool.Close()
	return nil
}

// SaveReport inserts a completed report. Saving the same ID twice fails.
func (db *PG) SaveReport(ctx context.Context, r model.Report) error {
	row, err := newReportRow(r)
	if err != nil {
		return err
	}
	err = withRetry(ctx, saveRetries, saveRetryDelay, func() error {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO audit_reports (id, url, source_kind, state, stages, average_score, started_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ID, row.url, row.sourceKind, row.state, row.stages, row.averageScore, r.StartedAt, r.CompletedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("storage: insert report %s: %w", r.ID, err)
	}
	return nil
}

// GetReport loads one report by ID.
func (db *PG) GetReport(ctx context.Context, id uuid.UUID) (model.Report, error) {
	var (
		r      model.Report
		state  []byte
		stages []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, state, stages, started_at, completed_at FROM audit_reports WHERE id = $1`, id,
	).Scan(&r.ID, &state, &stages, &r.StartedAt, &r.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Report{}, fmt.Errorf("storage: report %s: %w", id, ErrNotFound)
		}
		return model.Report{}, fmt.Errorf("storage: get report %s: %w", id, err)
	}
	if err := decodeReport(&r, state, stages); err != nil {
		return model.Report{}, err
	}
	return r, nil
}

// ListReports returns up to limit report summaries, newest first.
func (db *PG) ListReports(ctx context.Context, limit int) ([]model.ReportSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, url, source_kind, average_score, completed_at
		 FROM audit_reports ORDER BY completed_at DESC, id LIMIT $1`, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list reports: %w", err)
	}
	defer rows.Close()

	var out []model.ReportSummary
	for rows.Next() {
		var s model.ReportSummary
		var kind string
		if err := rows.Scan(&s.ID, &s.URL, &kind, &s.AverageScore, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan report summary: %w", err)
		}
		s.SourceKind = model.SourceKind(kind)
		out = append(out, s)
	}
	return out, rows.Err()
}

// reportRow is the column encoding shared by both back-ends.
type reportRow struct {
	url          string
	sourceKind   string
	state        []byte
	stages       []byte
	averageScore *float64
}

func newReportRow(r model.Report) (reportRow, error) {
	if r.ID == uuid.Nil {
		return reportRow{}, errors.New("storage: report has no ID")
	}
	state, err := json.Marshal(r.State)
	if err != nil {
		return reportRow{}, fmt.Errorf("storage: marshal state: %w", err)
	}
	stages, err := json.Marshal(r.Stages)
	if err != nil {
		return reportRow{}, fmt.Errorf("storage: marshal stages: %w", err)
	}
	return reportRow{
		url:          r.State.URL,
		sourceKind:   string(r.State.SourceKind),
		state:        state,
		stages:       stages,
		averageScore: r.Summary().AverageScore,
	}, nil
}

func decodeReport(r *model.Report, state, stages []byte) error {
	if err := json.Unmarshal(state, &r.State); err != nil {
		return fmt.Errorf("storage: decode state for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(stages, &r.Stages); err != nil {
		return fmt.Errorf("storage: decode stages for %s: %w", r.ID, err)
	}
	return nil
}

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
