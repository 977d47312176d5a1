package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashita-ai/kansa/internal/model"
)

// ---------------------------------------------------------------------------
// Stakeholders
// ---------------------------------------------------------------------------

func TestParseStakeholders_LastWriteWins(t *testing.T) {
	got := ParseStakeholders("Donors: want transparency\nVolunteers: want recognition\nDonors: want tax receipts")
	assert.Equal(t, map[string]string{
		"Donors":     "want tax receipts",
		"Volunteers": "want recognition",
	}, got)
}

func TestParseStakeholders_IgnoresLinesWithoutColon(t *testing.T) {
	got := ParseStakeholders("Here are the stakeholders\n\n  Board Members : oversight: and governance  \nthanks")
	assert.Equal(t, map[string]string{"Board Members": "oversight: and governance"}, got)
}

func TestParseStakeholders_Empty(t *testing.T) {
	assert.Empty(t, ParseStakeholders(""))
	assert.Empty(t, ParseStakeholders("no colons at all"))
}

// ---------------------------------------------------------------------------
// Recommendations
// ---------------------------------------------------------------------------

func TestParseRecommendations_TwoLevel(t *testing.T) {
	got := ParseRecommendations("Donors:\nImprove reporting\nAdd newsletter\nVolunteers:\nOffer training")
	assert.Equal(t, map[string][]string{
		"Donors":     {"Improve reporting", "Add newsletter"},
		"Volunteers": {"Offer training"},
	}, got)
}

func TestParseRecommendations_IndentedAndBlankLines(t *testing.T) {
	text := "Intro line is dropped\n" +
		"Donors:\n" +
		"  - Publish an annual report\n" +
		"\n" +
		"  - Note: include program costs\n" +
		"Community Partners: shared goals\n" +
		"\t- Co-host events\n"
	got := ParseRecommendations(text)
	assert.Equal(t, map[string][]string{
		"Donors":             {"- Publish an annual report", "- Note: include program costs"},
		"Community Partners": {"- Co-host events"},
	}, got)
}

func TestParseRecommendations_RepeatedLabelRestarts(t *testing.T) {
	got := ParseRecommendations("Donors:\nfirst\nVolunteers:\ntrain\nDonors:\nsecond")
	assert.Equal(t, []string{"second"}, got["Donors"])
	assert.Equal(t, []string{"train"}, got["Volunteers"])
}

func TestParseRecommendations_LabelWithNoItems(t *testing.T) {
	got := ParseRecommendations("Donors:\n\n")
	assert.Equal(t, map[string][]string{"Donors": {}}, got)
}

func TestParseRecommendations_NothingBeforeLabel(t *testing.T) {
	assert.Empty(t, ParseRecommendations("just advice\nmore advice"))
}

// ---------------------------------------------------------------------------
// Scores
// ---------------------------------------------------------------------------

func TestParseScores(t *testing.T) {
	got := ParseScores("Comprehensiveness: 8 (thorough)\nActionability: high (no number)")
	assert.Equal(t, map[string]model.ScoreEntry{
		"Comprehensiveness": {Score: 8, Explanation: "thorough"},
		"Actionability":     {Score: 0, Explanation: UnparseableScore},
	}, got)
}

func TestParseScores_EdgeCases(t *testing.T) {
	text := "Overall assessment follows\n" +
		"Strategic Alignment: 7\n" +
		"Potential Impact:  9 ( likely to help (a lot) )\n" +
		"Comprehensiveness: 6 (covers programs"
	got := ParseScores(text)
	assert.Equal(t, model.ScoreEntry{Score: 0, Explanation: UnparseableScore}, got["Strategic Alignment"],
		"missing parenthesis")
	assert.Equal(t, model.ScoreEntry{Score: 9, Explanation: "likely to help (a lot)"}, got["Potential Impact"])
	assert.Equal(t, model.ScoreEntry{Score: 6, Explanation: "covers programs"}, got["Comprehensiveness"])
	assert.Len(t, got, 3)
}

func TestParsers_SkipEmptyLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"Donors": "transparency"},
		ParseStakeholders(": stray note\nDonors: transparency"))

	assert.Equal(t, map[string][]string{"Donors": {"Improve reporting", "Add newsletter"}},
		ParseRecommendations("Donors:\nImprove reporting\n: aside\nAdd newsletter"),
		"an empty label line neither opens a list nor lands in the open one")

	assert.Equal(t, map[string]model.ScoreEntry{"Actionability": {Score: 7, Explanation: "practical"}},
		ParseScores(": 5 (x)\nActionability: 7 (practical)"))
}

func TestParsersArePure(t *testing.T) {
	stakeholders := "Donors: want transparency\nVolunteers: want recognition"
	recs := "Donors:\nImprove reporting\nVolunteers:\nOffer training"
	scores := "Comprehensiveness: 8 (thorough)\nActionability: high (no number)"

	assert.Equal(t, ParseStakeholders(stakeholders), ParseStakeholders(stakeholders))
	assert.Equal(t, ParseRecommendations(recs), ParseRecommendations(recs))
	assert.Equal(t, ParseScores(scores), ParseScores(scores))
}
