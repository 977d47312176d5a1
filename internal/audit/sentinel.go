package audit

import "github.com/ashita-ai/kansa/internal/model"

// Fixed values substituted when a stage has nothing to work with. They are
// data, not errors: a run that degrades still completes.
const (
	NoContentMarker       = "no content available for analysis"
	NoMissionMessage      = "no mission analysis available"
	NoStakeholdersMessage = "no stakeholder perspectives to generate recommendations from"
	NoRecommendations     = "no recommendations to score"
	UnparseableScore      = "unable to parse score"
	SocialPagePlaceholder = "social-page scraping not yet implemented"
)

func stakeholderSentinel() map[string]string {
	return map[string]string{model.ErrorKey: NoMissionMessage}
}

func recommendationSentinel() map[string][]string {
	return map[string][]string{model.ErrorKey: {NoStakeholdersMessage}}
}

func scoreSentinel() map[string]model.ScoreEntry {
	return map[string]model.ScoreEntry{model.ErrorKey: {Score: 0, Explanation: NoRecommendations}}
}

// The is*Sentinel predicates match a stage's sentinel exactly. A model reply
// that happens to use an "Error" label is real output and does not match.

func isStakeholderSentinel(m map[string]string) bool {
	return len(m) == 1 && m[model.ErrorKey] == NoMissionMessage
}

func isRecommendationSentinel(m map[string][]string) bool {
	recs := m[model.ErrorKey]
	return len(m) == 1 && len(recs) == 1 && recs[0] == NoStakeholdersMessage
}

func isScoreSentinel(m map[string]model.ScoreEntry) bool {
	e, ok := m[model.ErrorKey]
	return ok && len(m) == 1 && e == model.ScoreEntry{Score: 0, Explanation: NoRecommendations}
}
