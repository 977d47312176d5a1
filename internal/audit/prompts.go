package audit

import (
	"fmt"
	"strings"

	"github.com/ashita-ai/kansa/internal/model"
)

const missionInstruction = `You are an experienced analyst of nonprofit organizations.
From the content provided, identify the organization's core mission, its main
goals and what sets it apart. Cover:
- The mission statement
- Primary objectives
- Who the organization serves
- Its distinctive value to those it serves`

const stakeholderInstruction = `You analyze nonprofit stakeholders.
Given an organization's mission and characteristics, name the stakeholders who
matter most and describe how each is likely to see the organization. For every
stakeholder, describe their interests, what they expect, and where they are
likely to engage or raise concerns.
Give at least 3 distinct stakeholders, one per line, as "Stakeholder: perspective".`

const recommendationInstruction = `You are a strategy consultant for nonprofits.
Write targeted, practical recommendations that answer the perspectives of the
key stakeholders. For each stakeholder:
- Point out where the organization could improve
- Propose concrete strategies it can carry out
- Keep every recommendation consistent with the mission
Start each stakeholder on its own unindented line ending in a colon, then list
one recommendation per line beneath it.`

const scoringInstruction = `Evaluate this nonprofit audit on four dimensions:

1. Comprehensiveness (how fully the report covers the organization)
2. Actionability (how practical the recommendations are)
3. Strategic Alignment (how closely the recommendations follow the mission)
4. Potential Impact (how likely the recommendations are to drive positive change)

Score each dimension from 1 to 10 with a short justification, one per line, as
"Dimension: score (justification)".`

func missionMessage(raw string) string {
	return "Analyze the following organizational content:\n" + raw
}

func stakeholderMessage(mission string) string {
	return "Analyze stakeholder perspectives for this mission:\n" + mission
}

func recommendationMessage(mission string, perspectives map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mission Analysis: %s\n\nStakeholder Perspectives:\n", orNA(mission))
	for _, k := range model.SortedKeys(perspectives) {
		fmt.Fprintf(&sb, "%s: %s\n", k, perspectives[k])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func scoringMessage(mission string, recs map[string][]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mission Analysis: %s\n\nRecommendations:\n", orNA(mission))
	for _, k := range model.SortedKeys(recs) {
		fmt.Fprintf(&sb, "%s: %s\n", k, strings.Join(recs[k], "\n"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
