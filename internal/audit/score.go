package audit

import (
	"context"
	"log/slog"

	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/model"
)

// ScoreStage fills audit_score by grading the recommendations.
type ScoreStage struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewScoreStage creates the scoring stage.
func NewScoreStage(gen llm.Generator, logger *slog.Logger) *ScoreStage {
	return &ScoreStage{gen: gen, logger: logger}
}

func (s *ScoreStage) Name() string { return StageScore }

// Run degrades when there are no recommendations or the recommendation stage
// wrote its sentinel. Lines it cannot parse become per-dimension zero scores.
func (s *ScoreStage) Run(ctx context.Context, state model.AuditState) (model.AuditState, error) {
	out := state.Clone()
	s.logger.Info("scoring audit report", "url", state.URL)

	if len(state.Recommendations) == 0 || isRecommendationSentinel(state.Recommendations) {
		s.logger.Warn("no recommendations to score", "url", state.URL)
		out.AuditScore = scoreSentinel()
		return out, nil
	}

	msg := scoringMessage(model.Text(state.MissionAnalysis), state.Recommendations)
	text, err := s.gen.Generate(ctx, scoringInstruction, msg)
	if err != nil {
		s.logger.Error("audit scoring failed", "url", state.URL, "error", err)
		return model.AuditState{}, &AnalysisError{Stage: StageScore, Err: err}
	}
	out.AuditScore = ParseScores(text)
	for dim, e := range out.AuditScore {
		if e.Explanation == UnparseableScore && e.Score == 0 {
			s.logger.Warn("unparseable score line", "dimension", dim)
		}
	}
	return out, nil
}

// Degraded reports whether the stage wrote its sentinel.
func (s *ScoreStage) Degraded(out model.AuditState) bool {
	return isScoreSentinel(out.AuditScore)
}
