package model

import (
	"time"

	"github.com/google/uuid"
)

// StageTiming records how one pipeline stage went.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	// Degraded is true when the stage substituted a sentinel instead of
	// calling out, because upstream data was missing.
	Degraded bool `json:"degraded"`
}

// Report is a completed audit: the final state plus run metadata.
type Report struct {
	ID          uuid.UUID     `json:"id"`
	State       AuditState    `json:"state"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Stages      []StageTiming `json:"stages"`
}

// ReportSummary is the listing view of an archived report.
type ReportSummary struct {
	ID           uuid.UUID  `json:"id"`
	URL          string     `json:"url"`
	SourceKind   SourceKind `json:"source_kind"`
	AverageScore *float64   `json:"average_score,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Summary derives the listing view of r.
func (r Report) Summary() ReportSummary {
	s := ReportSummary{
		ID:         r.ID,
		URL:        r.State.URL,
		SourceKind: r.State.SourceKind,
		CreatedAt:  r.CompletedAt,
	}
	if avg, ok := AverageScore(r.State.AuditScore); ok {
		s.AverageScore = &avg
	}
	return s
}
