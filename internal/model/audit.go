// Package model defines the audit state threaded through the pipeline and the
// report that wraps it.
package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SourceKind identifies what kind of page an audit reads.
type SourceKind string

const (
	SourceWebsite    SourceKind = "website"
	SourceSocialPage SourceKind = "social-page"
)

// ParseSourceKind normalizes a caller-supplied source kind. An empty string
// means website. "facebook" is accepted as an alias for social-page.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SourceWebsite):
		return SourceWebsite, nil
	case string(SourceSocialPage), "social", "facebook":
		return SourceSocialPage, nil
	default:
		return "", fmt.Errorf("model: unknown source kind %q (want website or social-page)", s)
	}
}

// ErrorKey is the mapping key every stage uses for its "nothing to work
// with" sentinel entry.
const ErrorKey = "Error"

// ScoreEntry is one scored audit dimension.
type ScoreEntry struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// AuditState is the record threaded through the audit pipeline. Each stage
// receives the current value and returns a new one with its own fields set.
// Optional text fields are nil until the stage that owns them has run.
type AuditState struct {
	URL        string     `json:"url"`
	SourceKind SourceKind `json:"source_kind"`

	RawContent          *string `json:"raw_content,omitempty"`
	MissionAnalysis     *string `json:"mission_analysis,omitempty"`
	OrganizationalGoals *string `json:"organizational_goals,omitempty"`

	StakeholderPerspectives map[string]string     `json:"stakeholder_perspectives"`
	Recommendations         map[string][]string   `json:"recommendations"`
	AuditScore              map[string]ScoreEntry `json:"audit_score"`
}

// NewAuditState returns the initial state for a run: every optional field
// absent, every mapping empty.
func NewAuditState(url string, kind SourceKind) AuditState {
	return AuditState{
		URL:                     url,
		SourceKind:              kind,
		StakeholderPerspectives: map[string]string{},
		Recommendations:         map[string][]string{},
		AuditScore:              map[string]ScoreEntry{},
	}
}

// Clone returns a deep copy so a stage can write to the result without
// touching the value it was handed.
func (s AuditState) Clone() AuditState {
	out := s
	out.RawContent = clonePtr(s.RawContent)
	out.MissionAnalysis = clonePtr(s.MissionAnalysis)
	out.OrganizationalGoals = clonePtr(s.OrganizationalGoals)
	out.StakeholderPerspectives = maps.Clone(s.StakeholderPerspectives)
	out.AuditScore = maps.Clone(s.AuditScore)
	if s.Recommendations != nil {
		out.Recommendations = make(map[string][]string, len(s.Recommendations))
		for k, v := range s.Recommendations {
			out.Recommendations[k] = slices.Clone(v)
		}
	}
	return out
}

// Text returns the value of an optional text field, or "" when absent.
func Text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to s.
func Ptr(s string) *string { return &s }

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SortedKeys returns the keys of m in lexical order. Reports and prompts use
// it so output does not depend on map iteration order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// AverageScore returns the mean score across dimensions, ignoring the Error
// sentinel. ok is false when there is nothing to average.
func AverageScore(scores map[string]ScoreEntry) (avg float64, ok bool) {
	var sum, n int
	for dim, e := range scores {
		if dim == ErrorKey {
			continue
		}
		sum += e.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}
