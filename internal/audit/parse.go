package audit

import (
	"strconv"
	"strings"

	"github.com/ashita-ai/kansa/internal/model"
)

// ParseStakeholders reads "Label: description" lines. Lines without a colon
// or with an empty label are ignored, and a repeated label keeps its last
// description.
func ParseStakeholders(text string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		label, desc, ok := strings.Cut(line, ":")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			continue
		}
		out[label] = strings.TrimSpace(desc)
	}
	return out
}

// ParseRecommendations reads a two-level listing. A line that is not
// indented and contains a colon opens a label (the text before the colon)
// and resets that label's list; every other non-blank line is appended,
// trimmed, to the open label. Lines before the first label are dropped, as
// are label lines whose label is empty.
func ParseRecommendations(text string) map[string][]string {
	out := map[string][]string{}
	current := ""
	active := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !isIndented(line) && strings.Contains(line, ":") {
			label, _, _ := strings.Cut(line, ":")
			if label = strings.TrimSpace(label); label == "" {
				continue
			}
			current = label
			active = true
			out[current] = []string{}
			continue
		}
		if active {
			out[current] = append(out[current], trimmed)
		}
	}
	return out
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// ParseScores reads "Dimension: N (explanation)" lines. A line with a colon
// whose score is missing or not an integer is kept with score 0 and
// UnparseableScore as its explanation. Lines without a colon or with an
// empty dimension are ignored.
func ParseScores(text string) map[string]model.ScoreEntry {
	out := map[string]model.ScoreEntry{}
	for _, line := range strings.Split(text, "\n") {
		label, rest, ok := strings.Cut(line, ":")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			continue
		}
		out[label] = parseScore(rest)
	}
	return out
}

func parseScore(s string) model.ScoreEntry {
	num, explanation, ok := strings.Cut(s, "(")
	if !ok {
		return model.ScoreEntry{Score: 0, Explanation: UnparseableScore}
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return model.ScoreEntry{Score: 0, Explanation: UnparseableScore}
	}
	explanation = strings.TrimSpace(explanation)
	explanation = strings.TrimSpace(strings.TrimSuffix(explanation, ")"))
	return model.ScoreEntry{Score: n, Explanation: explanation}
}
