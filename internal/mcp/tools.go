package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/kansa/internal/audit"
	"github.com/ashita-ai/kansa/internal/model"
	"github.com/ashita-ai/kansa/internal/storage"
)

func (s *Server) registerTools() {
	// kansa_audit: run the full audit pipeline against a URL.
	s.mcpServer.AddTool(
		mcplib.NewTool("kansa_audit",
			mcplib.WithDescription("Audit a nonprofit's web presence: extract the mission, derive stakeholder perspectives, recommend improvements and score the result"),
			mcplib.WithString("url", mcplib.Description("Page to audit"), mcplib.Required()),
			mcplib.WithString("source_kind",
				mcplib.Description("Kind of page: website (default) or social-page"),
				mcplib.Enum(string(model.SourceWebsite), string(model.SourceSocialPage)),
			),
		),
		s.handleAudit,
	)

	// kansa_report: fetch an archived report by ID.
	s.mcpServer.AddTool(
		mcplib.NewTool("kansa_report",
			mcplib.WithDescription("Retrieve a previously archived audit report by its ID"),
			mcplib.WithString("id", mcplib.Description("Report ID (UUID)"), mcplib.Required()),
		),
		s.handleReport,
	)

	// kansa_reports: list recent archived reports.
	s.mcpServer.AddTool(
		mcplib.NewTool("kansa_reports",
			mcplib.WithDescription("List recently archived audit reports, newest first"),
			mcplib.WithNumber("limit", mcplib.Description("Maximum results to return (default 20)")),
		),
		s.handleReports,
	)
}

func (s *Server) handleAudit(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	url := request.GetString("url", "")
	if url == "" {
		return errorResult("url is required"), nil
	}
	kind, err := model.ParseSourceKind(request.GetString("source_kind", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	report, err := s.auditor.Audit(ctx, url, kind)
	if err != nil {
		s.logger.Warn("mcp: audit failed", "url", url, "error", err)
		return errorResult(describeAuditError(err)), nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal report: %w", err)
	}
	return textResult(string(data)), nil
}

// describeAuditError names the failure kind so the assistant can tell a
// configuration problem from an unreachable page or a model outage.
func describeAuditError(err error) string {
	var (
		cfgErr      *audit.ConfigurationError
		fetchErr    *audit.FetchError
		analysisErr *audit.AnalysisError
	)
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("configuration error: %s is not set", cfgErr.Setting)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("fetch failed: %v", fetchErr.Err)
	case errors.As(err, &analysisErr):
		return fmt.Sprintf("analysis failed in %s stage: %v", analysisErr.Stage, analysisErr.Err)
	default:
		return fmt.Sprintf("audit failed: %v", err)
	}
}

func (s *Server) handleReport(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.store == nil {
		return errorResult("report archive is not configured (set KANSA_DATABASE_URL)"), nil
	}
	id, err := uuid.Parse(request.GetString("id", ""))
	if err != nil {
		return errorResult("id must be a valid UUID"), nil
	}

	report, err := s.store.GetReport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return errorResult(fmt.Sprintf("report %s not found", id)), nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("get report failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal report: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) handleReports(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if s.store == nil {
		return errorResult("report archive is not configured (set KANSA_DATABASE_URL)"), nil
	}
	list, err := s.store.ListReports(ctx, request.GetInt("limit", 20))
	if err != nil {
		return errorResult(fmt.Sprintf("list reports failed: %v", err)), nil
	}
	if list == nil {
		list = []model.ReportSummary{}
	}

	data, err := json.MarshalIndent(map[string]any{
		"reports": list,
		"total":   len(list),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal reports: %w", err)
	}
	return textResult(string(data)), nil
}
