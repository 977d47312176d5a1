package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/ashita-ai/kansa"
)

func writeReport(w io.Writer, format string, r kansa.Report) error {
	if format == "json" {
		return writeJSON(w, r)
	}
	_, err := io.WriteString(w, renderText(r.State))
	return err
}

func writeBatch(w io.Writer, format string, results []batchResult) error {
	if format == "json" {
		return writeJSON(w, results)
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "=== %s ===\n", r.URL)
		if r.Error != "" {
			fmt.Fprintf(&sb, "Audit failed: %s\n", r.Error)
			continue
		}
		sb.WriteString(renderText(r.Report.State))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// renderText prints a finished audit for a terminal. Keys are sorted so the
// same state always renders the same way.
func renderText(s kansa.AuditState) string {
	var sb strings.Builder
	sb.WriteString("Audit Completed Successfully!\n")

	sb.WriteString("\nMission Analysis:\n")
	if s.MissionAnalysis != nil && *s.MissionAnalysis != "" {
		sb.WriteString(*s.MissionAnalysis)
	} else {
		sb.WriteString("N/A")
	}
	sb.WriteString("\n")

	sb.WriteString("\nStakeholder Perspectives:\n")
	for _, k := range slices.Sorted(maps.Keys(s.StakeholderPerspectives)) {
		fmt.Fprintf(&sb, "%s: %s\n", k, s.StakeholderPerspectives[k])
	}

	sb.WriteString("\nRecommendations:\n")
	for _, k := range slices.Sorted(maps.Keys(s.Recommendations)) {
		fmt.Fprintf(&sb, "%s:\n", k)
		for _, rec := range s.Recommendations[k] {
			fmt.Fprintf(&sb, "  - %s\n", rec)
		}
	}

	sb.WriteString("\nAudit Score:\n")
	for _, k := range slices.Sorted(maps.Keys(s.AuditScore)) {
		e := s.AuditScore[k]
		fmt.Fprintf(&sb, "%s: %d/10 - %s\n", k, e.Score, e.Explanation)
	}
	if s.AverageScore != nil {
		fmt.Fprintf(&sb, "Overall: %.1f/10\n", *s.AverageScore)
	}
	return sb.String()
}
