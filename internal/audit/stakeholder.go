package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/model"
)

// StakeholderStage fills stakeholder_perspectives from mission_analysis.
type StakeholderStage struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewStakeholderStage creates the stakeholder stage.
func NewStakeholderStage(gen llm.Generator, logger *slog.Logger) *StakeholderStage {
	return &StakeholderStage{gen: gen, logger: logger}
}

func (s *StakeholderStage) Name() string { return StageStakeholders }

// Run degrades when the mission is absent, blank or the no-content marker.
func (s *StakeholderStage) Run(ctx context.Context, state model.AuditState) (model.AuditState, error) {
	out := state.Clone()
	s.logger.Info("generating stakeholder perspectives", "url", state.URL)

	mission := model.Text(state.MissionAnalysis)
	if strings.TrimSpace(mission) == "" || mission == NoContentMarker {
		s.logger.Warn("no mission analysis available", "url", state.URL)
		out.StakeholderPerspectives = stakeholderSentinel()
		return out, nil
	}

	text, err := s.gen.Generate(ctx, stakeholderInstruction, stakeholderMessage(mission))
	if err != nil {
		s.logger.Error("stakeholder perspective generation failed", "url", state.URL, "error", err)
		return model.AuditState{}, &AnalysisError{Stage: StageStakeholders, Err: err}
	}
	out.StakeholderPerspectives = ParseStakeholders(text)
	s.logger.Debug("parsed stakeholder perspectives", "count", len(out.StakeholderPerspectives))
	return out, nil
}

// Degraded reports whether the stage wrote its sentinel.
func (s *StakeholderStage) Degraded(out model.AuditState) bool {
	return isStakeholderSentinel(out.StakeholderPerspectives)
}
