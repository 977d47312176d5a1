package audit

import (
	"context"
	"log/slog"

	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/model"
)

// RecommendationStage fills recommendations from the mission and the
// stakeholder perspectives.
type RecommendationStage struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewRecommendationStage creates the recommendation stage.
func NewRecommendationStage(gen llm.Generator, logger *slog.Logger) *RecommendationStage {
	return &RecommendationStage{gen: gen, logger: logger}
}

func (s *RecommendationStage) Name() string { return StageRecommendation }

// Run degrades when there are no perspectives or the stakeholder stage wrote
// its sentinel.
func (s *RecommendationStage) Run(ctx context.Context, state model.AuditState) (model.AuditState, error) {
	out := state.Clone()
	s.logger.Info("generating recommendations", "url", state.URL)

	if len(state.StakeholderPerspectives) == 0 || isStakeholderSentinel(state.StakeholderPerspectives) {
		s.logger.Warn("no stakeholder perspectives to generate recommendations from", "url", state.URL)
		out.Recommendations = recommendationSentinel()
		return out, nil
	}

	msg := recommendationMessage(model.Text(state.MissionAnalysis), state.StakeholderPerspectives)
	text, err := s.gen.Generate(ctx, recommendationInstruction, msg)
	if err != nil {
		s.logger.Error("recommendation generation failed", "url", state.URL, "error", err)
		return model.AuditState{}, &AnalysisError{Stage: StageRecommendation, Err: err}
	}
	out.Recommendations = ParseRecommendations(text)
	s.logger.Debug("parsed recommendations", "stakeholders", len(out.Recommendations))
	return out, nil
}

// Degraded reports whether the stage wrote its sentinel.
func (s *RecommendationStage) Degraded(out model.AuditState) bool {
	return isRecommendationSentinel(out.Recommendations)
}
