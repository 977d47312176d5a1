package audit

import (
	"context"
	"log/slog"

	"github.com/ashita-ai/kansa/internal/fetch"
	"github.com/ashita-ai/kansa/internal/model"
)

// UnconfiguredFetcher stands in for a fetcher whose credential is missing.
// Every call fails with a ConfigurationError naming the setting, so the
// absence only matters for runs that actually need to fetch.
type UnconfiguredFetcher struct {
	Setting string
}

// Fetch always fails.
func (u UnconfiguredFetcher) Fetch(context.Context, string) (string, error) {
	return "", &ConfigurationError{Setting: u.Setting}
}

// FetchStage fills raw_content.
type FetchStage struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// NewFetchStage creates the fetch stage.
func NewFetchStage(f fetch.Fetcher, logger *slog.Logger) *FetchStage {
	return &FetchStage{fetcher: f, logger: logger}
}

func (s *FetchStage) Name() string { return StageFetch }

// Run fetches website content. Social pages are not scraped; they get a
// placeholder and the run carries on.
func (s *FetchStage) Run(ctx context.Context, state model.AuditState) (model.AuditState, error) {
	out := state.Clone()
	s.logger.Info("extracting content", "url", state.URL, "source_kind", state.SourceKind)

	if state.SourceKind == model.SourceSocialPage {
		s.logger.Warn("social-page scraping is not supported, using placeholder", "url", state.URL)
		out.RawContent = model.Ptr(SocialPagePlaceholder)
		return out, nil
	}

	content, err := s.fetcher.Fetch(ctx, state.URL)
	if err != nil {
		s.logger.Error("content extraction failed", "url", state.URL, "error", err)
		return model.AuditState{}, &FetchError{URL: state.URL, Err: err}
	}
	out.RawContent = model.Ptr(content)
	return out, nil
}
