// Package audit runs the nonprofit web-presence audit: a fixed sequence of
// stages that fetch a page, analyze the mission, derive stakeholder
// perspectives, recommend improvements and score the result.
//
// Stages never mutate the state they are handed. Each returns a new value;
// a stage that lacks upstream data writes a sentinel instead of failing.
package audit

import (
	"context"
	"log/slog"

	"github.com/ashita-ai/kansa/internal/fetch"
	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/model"
)

// Stage is one step of the audit.
type Stage interface {
	Name() string
	Run(ctx context.Context, state model.AuditState) (model.AuditState, error)
}

// degrader is implemented by stages that can tell whether the state they
// produced carries their sentinel instead of real output.
type degrader interface {
	Degraded(out model.AuditState) bool
}

// Stage names, also used as span and log attributes.
const (
	StageFetch          = "fetch"
	StageMission        = "mission"
	StageStakeholders   = "stakeholders"
	StageRecommendation = "recommendations"
	StageScore          = "score"
)

// DefaultStages returns the five audit stages in run order.
func DefaultStages(f fetch.Fetcher, gen llm.Generator, logger *slog.Logger) []Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return []Stage{
		NewFetchStage(f, logger),
		NewMissionStage(gen, logger),
		NewStakeholderStage(gen, logger),
		NewRecommendationStage(gen, logger),
		NewScoreStage(gen, logger),
	}
}
