// Package storage archives completed audit reports.
//
// Two back-ends implement Store: PG (PostgreSQL via pgxpool) and SQLite
// (a local file via modernc.org/sqlite). Open picks one from the database
// URL scheme and applies the embedded migrations for that dialect.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/migrations"
)

// Store is the report archive.
type Store interface {
	SaveReport(ctx context.Context, r model.Report) error
	// GetReport returns ErrNotFound (wrapped) when no report has the ID.
	GetReport(ctx context.Context, id uuid.UUID) (model.Report, error)
	// ListReports returns summaries newest first. limit <= 0 means the default.
	ListReports(ctx context.Context, limit int) ([]model.ReportSummary, error)
	Close() error
}

var (
	_ Store = (*PG)(nil)
	_ Store = (*SQLite)(nil)
)

// Open connects to the archive named by databaseURL and migrates it.
// Accepted forms are postgres://..., postgresql://... and sqlite://path.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		db, err := NewPG(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, migrations.Postgres()); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil

	case strings.HasPrefix(databaseURL, "sqlite://"):
		db, err := NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"), logger)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, migrations.SQLite()); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("storage: unsupported database URL %q (want postgres:// or sqlite://)", redact(databaseURL))
	}
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i+3] + "..."
	}
	if len(u) > 16 {
		return u[:16] + "..."
	}
	return u
}
