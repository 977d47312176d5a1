package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/internal/telemetry"
)

// Pipeline runs its stages strictly in order, once each, and stops at the
// first error. A Pipeline holds no per-run state and may be shared by
// concurrent runs.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
	tracer trace.Tracer

	stageDuration metric.Float64Histogram
	runs          metric.Int64Counter
}

// NewPipeline creates a pipeline over stages in the given order.
func NewPipeline(logger *slog.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	meter := telemetry.Meter("kansa/audit")
	stageDuration, _ := meter.Float64Histogram("kansa.audit.stage.duration",
		metric.WithDescription("Audit stage duration (ms)"),
		metric.WithUnit("ms"),
	)
	runs, _ := meter.Int64Counter("kansa.audit.runs",
		metric.WithDescription("Completed and failed audit runs"),
	)
	return &Pipeline{
		stages:        stages,
		logger:        logger,
		tracer:        telemetry.Tracer("kansa/audit"),
		stageDuration: stageDuration,
		runs:          runs,
	}
}

// StageNames lists the stages in run order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run audits url and returns the final state. On error no state is returned.
func (p *Pipeline) Run(ctx context.Context, url string, kind model.SourceKind) (model.AuditState, error) {
	report, err := p.RunReport(ctx, url, kind)
	if err != nil {
		return model.AuditState{}, err
	}
	return report.State, nil
}

// RunReport audits url and returns the final state with run metadata.
func (p *Pipeline) RunReport(ctx context.Context, url string, kind model.SourceKind) (model.Report, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return model.Report{}, ErrEmptyURL
	}
	if kind == "" {
		kind = model.SourceWebsite
	}

	report := model.Report{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Stages:    make([]model.StageTiming, 0, len(p.stages)),
	}
	logger := p.logger.With("run_id", report.ID, "url", url, "source_kind", kind)

	ctx, span := p.tracer.Start(ctx, "audit.run", trace.WithAttributes(
		attribute.String("kansa.run_id", report.ID.String()),
		attribute.String("kansa.url", url),
		attribute.String("kansa.source_kind", string(kind)),
	))
	defer span.End()

	logger.Info("starting audit")
	state := model.NewAuditState(url, kind)
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, span, logger, fmt.Errorf("audit: %s stage: %w", stage.Name(), err))
		}

		next, timing, err := p.runStage(ctx, stage, state)
		if err != nil {
			return p.fail(ctx, span, logger, err)
		}
		report.Stages = append(report.Stages, timing)
		state = next
	}

	report.State = state
	report.CompletedAt = time.Now().UTC()
	p.runs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("error", false)))
	logger.Info("audit completed", "duration_ms", report.CompletedAt.Sub(report.StartedAt).Milliseconds())
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, state model.AuditState) (model.AuditState, model.StageTiming, error) {
	ctx, span := p.tracer.Start(ctx, "audit.stage."+stage.Name())
	defer span.End()

	start := time.Now()
	out, err := stage.Run(ctx, state)
	elapsed := time.Since(start)
	p.stageDuration.Record(ctx, float64(elapsed.Milliseconds()),
		metric.WithAttributes(attribute.String("stage", stage.Name()), attribute.Bool("error", err != nil)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.AuditState{}, model.StageTiming{}, err
	}

	timing := model.StageTiming{Name: stage.Name(), Duration: elapsed}
	if d, ok := stage.(degrader); ok {
		timing.Degraded = d.Degraded(out)
	}
	span.SetAttributes(attribute.Bool("kansa.stage.degraded", timing.Degraded))
	return out, timing, nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, logger *slog.Logger, err error) (model.Report, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.runs.Add(ctx, 1, metric.WithAttributes(attribute.Bool("error", true)))
	logger.Error("audit failed", "error", err)
	return model.Report{}, err
}
