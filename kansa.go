// Package kansa is the public API for embedding the Kansa nonprofit web audit.
//
// An audit fetches a nonprofit's page, asks a language model for a mission
// analysis, stakeholder perspectives and recommendations, and scores the
// result:
//
//	app, err := kansa.New(
//	    kansa.WithVersion(version),
//	    kansa.WithLogger(logger),
//	)
//	if err != nil { ... }
//	defer app.Close(ctx)
//	state, err := app.RunAudit(ctx, "https://example.org", "website")
//
// The import graph enforces a strict no-cycle rule: kansa (root) imports
// internal/*, but internal/* never imports kansa (root). Public types
// (Report, AuditState, etc.) are standalone structs with no internal imports;
// conversion helpers live here because this is the only file that sees both
// sides of the boundary.
package kansa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ashita-ai/kansa/internal/audit"
	"github.com/ashita-ai/kansa/internal/config"
	"github.com/ashita-ai/kansa/internal/fetch"
	"github.com/ashita-ai/kansa/internal/llm"
	"github.com/ashita-ai/kansa/internal/mcp"
	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/internal/storage"
	"github.com/ashita-ai/kansa/internal/telemetry"
)

// ErrArchiveDisabled is returned by the report archive methods when no
// database is configured.
var ErrArchiveDisabled = errors.New("kansa: report archive is not configured (set KANSA_DATABASE_URL)")

// ErrReportNotFound is returned when no archived report has the requested ID.
var ErrReportNotFound = storage.ErrNotFound

// ErrEmptyURL is returned when an audit is requested without a URL.
var ErrEmptyURL = audit.ErrEmptyURL

// App is the Kansa audit lifecycle. Construct with New(), release with Close().
// App has no public fields; use New() options to configure it.
// An App is safe for concurrent audits: each run owns its own state.
type App struct {
	cfg          config.Config
	pipeline     *audit.Pipeline
	store        storage.Store // nil when archiving is disabled
	reportHooks  []ReportHook
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string
}

// New loads configuration, initialises telemetry, builds the generation and
// fetch clients, and opens the report archive when one is configured.
func New(opts ...Option) (*App, error) {
	// Apply options.
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Load configuration (env vars), then apply option overrides.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if o.noArchive {
		cfg.DatabaseURL = ""
	}
	if o.fetchMode != "" {
		cfg.FetchMode = o.fetchMode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	ctx := context.Background()

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    cfg.OTELInsecure,
		ServiceName: cfg.ServiceName,
		Version:     version,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	// Generation client: external override takes priority over config.
	var gen llm.Generator
	if o.generator != nil {
		gen = o.generator
	} else {
		gen = newGenerator(cfg, logger)
	}

	var fetcher fetch.Fetcher
	if o.fetcher != nil {
		fetcher = o.fetcher
	} else {
		fetcher = newFetcher(cfg, logger)
	}

	// Report archive.
	var store storage.Store
	if cfg.DatabaseURL != "" {
		store, err = storage.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			_ = otelShutdown(ctx)
			return nil, fmt.Errorf("storage: %w", err)
		}
		logger.Info("report archive: enabled")
	} else {
		logger.Debug("report archive: disabled (no KANSA_DATABASE_URL)")
	}

	return &App{
		cfg:          cfg,
		pipeline:     audit.NewPipeline(logger, audit.DefaultStages(fetcher, gen, logger)...),
		store:        store,
		reportHooks:  o.reportHooks,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// newGenerator builds the configured text-generation client wrapped with tracing.
func newGenerator(cfg config.Config, logger *slog.Logger) llm.Generator {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		logger.Debug("generation: ollama", "url", cfg.OllamaURL, "model", cfg.LLMModel)
		return llm.WithTracing(llm.NewOllamaClient(cfg.OllamaURL, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMTimeout), config.ProviderOllama)
	default:
		logger.Debug("generation: openai-compatible", "url", cfg.LLMBaseURL, "model", cfg.LLMModel)
		return llm.WithTracing(llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		}), config.ProviderOpenAI)
	}
}

// newFetcher builds the configured content fetcher. In firecrawl mode with no
// key, the returned fetcher fails every call with a configuration error; the
// absence only matters for runs that actually fetch.
func newFetcher(cfg config.Config, logger *slog.Logger) fetch.Fetcher {
	switch cfg.FetchMode {
	case config.FetchModeDirect:
		return fetch.NewDirect(cfg.MaxContentBytes, cfg.FetchTimeout)
	default:
		if cfg.FirecrawlAPIKey == "" {
			logger.Debug("fetch: FIRECRAWL_API_KEY not set; website audits will fail until it is")
			return audit.UnconfiguredFetcher{Setting: "FIRECRAWL_API_KEY"}
		}
		return fetch.NewFirecrawl(cfg.FirecrawlURL, cfg.FirecrawlAPIKey, cfg.FetchTimeout)
	}
}

// RunAudit audits url and returns the final state. sourceKind is "website"
// (also the default for "") or "social-page". On failure no state is
// returned; classify the error with IsFetchError, IsAnalysisError and
// IsConfigurationError.
func (a *App) RunAudit(ctx context.Context, url, sourceKind string) (AuditState, error) {
	r, err := a.AuditReport(ctx, url, sourceKind)
	if err != nil {
		return AuditState{}, err
	}
	return r.State, nil
}

// AuditReport is RunAudit returning the full report with run metadata.
// Successful reports are archived when archiving is enabled.
func (a *App) AuditReport(ctx context.Context, url, sourceKind string) (Report, error) {
	kind, err := model.ParseSourceKind(sourceKind)
	if err != nil {
		return Report{}, err
	}
	r, err := a.audit(ctx, url, kind)
	if err != nil {
		return Report{}, err
	}
	return toPublicReport(r), nil
}

func (a *App) audit(ctx context.Context, url string, kind model.SourceKind) (model.Report, error) {
	r, err := a.pipeline.RunReport(ctx, url, kind)
	if err != nil {
		return model.Report{}, err
	}

	if a.store != nil {
		if err := a.store.SaveReport(ctx, r); err != nil {
			// The audit itself succeeded; losing the archive copy is not fatal.
			a.logger.Error("archive report failed", "run_id", r.ID, "error", err)
		}
	}

	if len(a.reportHooks) > 0 {
		pub := toPublicReport(r)
		for _, h := range a.reportHooks {
			if err := h.OnReportCompleted(ctx, pub); err != nil {
				a.logger.Warn("report hook failed", "run_id", r.ID, "error", err)
			}
		}
	}
	return r, nil
}

// ArchiveEnabled reports whether completed reports are being saved.
func (a *App) ArchiveEnabled() bool {
	return a.store != nil
}

// GetReport returns an archived report. Errors wrap ErrReportNotFound when
// the ID is unknown and ErrArchiveDisabled when no archive is configured.
func (a *App) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	if a.store == nil {
		return Report{}, ErrArchiveDisabled
	}
	r, err := a.store.GetReport(ctx, id)
	if err != nil {
		return Report{}, err
	}
	return toPublicReport(r), nil
}

// ListReports returns up to limit archived report summaries, newest first.
func (a *App) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if a.store == nil {
		return nil, ErrArchiveDisabled
	}
	list, err := a.store.ListReports(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ReportSummary, len(list))
	for i, s := range list {
		out[i] = ReportSummary{
			ID:           s.ID,
			URL:          s.URL,
			SourceKind:   SourceKind(s.SourceKind),
			AverageScore: s.AverageScore,
			CreatedAt:    s.CreatedAt,
		}
	}
	return out, nil
}

// ServeMCP serves the Model Context Protocol over stdin/stdout until the
// client disconnects.
func (a *App) ServeMCP() error {
	a.logger.Info("mcp: serving on stdio", "version", a.version)
	return mcp.New(mcpAuditor{a}, a.store, a.logger, a.version).ServeStdio()
}

// mcpAuditor exposes the App's audit to the MCP server.
type mcpAuditor struct{ app *App }

func (m mcpAuditor) Audit(ctx context.Context, url string, kind model.SourceKind) (model.Report, error) {
	return m.app.audit(ctx, url, kind)
}

// Close releases the archive connection and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	if err := a.otelShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// IsFetchError reports whether err is a content fetch failure, including a
// missing fetch credential.
func IsFetchError(err error) bool {
	var fe *audit.FetchError
	return errors.As(err, &fe)
}

// IsAnalysisError reports whether err is a failed generation call.
func IsAnalysisError(err error) bool {
	var ae *audit.AnalysisError
	return errors.As(err, &ae)
}

// IsConfigurationError reports whether err stems from a missing required setting.
func IsConfigurationError(err error) bool {
	var ce *audit.ConfigurationError
	return errors.As(err, &ce)
}

// FailedStage returns the name of the analysis stage that failed, or "" when
// err is not an analysis error.
func FailedStage(err error) string {
	var ae *audit.AnalysisError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

func toPublicReport(r model.Report) Report {
	stages := make([]StageTiming, len(r.Stages))
	for i, s := range r.Stages {
		stages[i] = StageTiming{Name: s.Name, Duration: s.Duration, Degraded: s.Degraded}
	}
	return Report{
		ID:          r.ID,
		State:       toPublicState(r.State),
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Stages:      stages,
	}
}

// toPublicState copies s; the result shares nothing with the internal value.
func toPublicState(s model.AuditState) AuditState {
	c := s.Clone()
	scores := make(map[string]ScoreEntry, len(c.AuditScore))
	for k, v := range c.AuditScore {
		scores[k] = ScoreEntry{Score: v.Score, Explanation: v.Explanation}
	}
	out := AuditState{
		URL:                     c.URL,
		SourceKind:              SourceKind(c.SourceKind),
		RawContent:              c.RawContent,
		MissionAnalysis:         c.MissionAnalysis,
		OrganizationalGoals:     c.OrganizationalGoals,
		StakeholderPerspectives: c.StakeholderPerspectives,
		Recommendations:         c.Recommendations,
		AuditScore:              scores,
	}
	if avg, ok := model.AverageScore(c.AuditScore); ok {
		out.AverageScore = &avg
	}
	return out
}
