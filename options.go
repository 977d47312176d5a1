package kansa

import "log/slog"

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Callers use the With* functions.
type resolvedOptions struct {
	databaseURL string
	fetchMode   string
	logger      *slog.Logger
	version     string
	generator   Generator
	fetcher     Fetcher
	reportHooks []ReportHook
	noArchive   bool
}

// WithDatabaseURL overrides the report archive URL from config (KANSA_DATABASE_URL env var).
// Accepts postgres://... or sqlite://path.
func WithDatabaseURL(url string) Option {
	return func(o *resolvedOptions) { o.databaseURL = url }
}

// WithoutArchive disables report archiving even when KANSA_DATABASE_URL is set.
func WithoutArchive() Option {
	return func(o *resolvedOptions) { o.noArchive = true }
}

// WithFetchMode overrides the fetch mode from config (KANSA_FETCH_MODE env var):
// "firecrawl" or "direct".
func WithFetchMode(mode string) Option {
	return func(o *resolvedOptions) { o.fetchMode = mode }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported to telemetry and MCP clients.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithGenerator replaces the configured text-generation client.
func WithGenerator(g Generator) Option {
	return func(o *resolvedOptions) { o.generator = g }
}

// WithFetcher replaces the configured content fetcher.
func WithFetcher(f Fetcher) Option {
	return func(o *resolvedOptions) { o.fetcher = f }
}

// WithReportHook registers a hook to receive completed reports.
// Multiple hooks may be registered; all registered hooks receive every report.
func WithReportHook(hook ReportHook) Option {
	return func(o *resolvedOptions) { o.reportHooks = append(o.reportHooks, hook) }
}
