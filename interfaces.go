package kansa

import "context"

// Generator produces text from a system instruction and a user message.
// When provided via WithGenerator, replaces the configured OpenAI-compatible
// or Ollama client.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Fetcher returns the extracted text of a page. An empty result is valid.
// When provided via WithFetcher, replaces the configured Firecrawl or direct
// fetcher, and the Firecrawl credential is no longer required.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ReportHook is notified after each successful audit, once the report has
// been archived (when archiving is enabled). Hooks run synchronously in
// registration order; a failing hook is logged and does not fail the audit.
type ReportHook interface {
	OnReportCompleted(ctx context.Context, report Report) error
}

// ReportHookFunc adapts a function to the ReportHook interface.
type ReportHookFunc func(ctx context.Context, report Report) error

// OnReportCompleted calls f.
func (f ReportHookFunc) OnReportCompleted(ctx context.Context, report Report) error {
	return f(ctx, report)
}
