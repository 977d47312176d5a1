package kansa

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies what kind of page an audit reads.
type SourceKind string

const (
	SourceWebsite    SourceKind = "website"
	SourceSocialPage SourceKind = "social-page"
)

// ErrorKey is the mapping key a stage uses for its sentinel entry when it
// had nothing to work with.
const ErrorKey = "Error"

// ScoreEntry is one scored audit dimension. A score of 0 marks a dimension
// that could not be parsed or a run with nothing to score.
type ScoreEntry struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// AuditState is the public representation of a finished audit.
// It is a curated view of the internal state for use outside the module.
// Optional text fields are nil when the stage that owns them did not set them.
type AuditState struct {
	URL        string     `json:"url"`
	SourceKind SourceKind `json:"source_kind"`

	RawContent          *string `json:"raw_content,omitempty"`
	MissionAnalysis     *string `json:"mission_analysis,omitempty"`
	OrganizationalGoals *string `json:"organizational_goals,omitempty"`

	StakeholderPerspectives map[string]string     `json:"stakeholder_perspectives"`
	Recommendations         map[string][]string   `json:"recommendations"`
	AuditScore              map[string]ScoreEntry `json:"audit_score"`

	// AverageScore is the mean over scored dimensions, ignoring the Error
	// sentinel. Nil when there is nothing to average.
	AverageScore *float64 `json:"average_score,omitempty"`
}

// StageTiming records how one pipeline stage went.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Degraded bool          `json:"degraded"`
}

// Report is a completed audit with run metadata.
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
