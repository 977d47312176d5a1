package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/model"
)

// MissionStage fills mission_analysis from raw_content.
type MissionStage struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewMissionStage creates the mission stage.
func NewMissionStage(gen llm.Generator, logger *slog.Logger) *MissionStage {
	return &MissionStage{gen: gen, logger: logger}
}

func (s *MissionStage) Name() string { return StageMission }

func (s *MissionStage) Run(ctx context.Context, state model.AuditState) (model.AuditState, error) {
	out := state.Clone()
	s.logger.Info("analyzing organization mission", "url", state.URL)

	raw := model.Text(state.RawContent)
	if strings.TrimSpace(raw) == "" {
		s.logger.Warn("no content available for mission analysis", "url", state.URL)
		out.MissionAnalysis = model.Ptr(NoContentMarker)
		return out, nil
	}

	text, err := s.gen.Generate(ctx, missionInstruction, missionMessage(raw))
	if err != nil {
		s.logger.Error("mission analysis failed", "url", state.URL, "error", err)
		return model.AuditState{}, &AnalysisError{Stage: StageMission, Err: err}
	}
	out.MissionAnalysis = model.Ptr(text)
	return out, nil
}

// Degraded reports whether the stage wrote the no-content marker.
func (s *MissionStage) Degraded(out model.AuditState) bool {
	return model.Text(out.MissionAnalysis) == NoContentMarker
}
