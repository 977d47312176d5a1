package mcp

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	// audit-organization: walks the assistant through running and presenting an audit.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("audit-organization",
			mcplib.WithPromptDescription("Run a web-presence audit for a nonprofit and present the findings"),
			mcplib.WithArgument("url",
				mcplib.ArgumentDescription("The organization's website or social page"),
				mcplib.RequiredArgument(),
			),
		),
		s.handleAuditOrganizationPrompt,
	)

	// compare-audits: compares two archived reports for the same organization.
	s.mcpServer.AddPrompt(
		mcplib.NewPrompt("compare-audits",
			mcplib.WithPromptDescription("Compare two archived audit reports and summarize what changed"),
			mcplib.WithArgument("before", mcplib.ArgumentDescription("ID of the earlier report"), mcplib.RequiredArgument()),
			mcplib.WithArgument("after", mcplib.ArgumentDescription("ID of the later report"), mcplib.RequiredArgument()),
		),
		s.handleCompareAuditsPrompt,
	)
}

func (s *Server) handleAuditOrganizationPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	url := request.Params.Arguments["url"]
	if url == "" {
		return nil, fmt.Errorf("url argument is required")
	}

	return &mcplib.GetPromptResult{
		Description: fmt.Sprintf("Audit the web presence at %s", url),
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Audit the nonprofit at %s:

1. CALL kansa_audit with url="%s". Use source_kind="social-page" only if the
   URL is a social media profile.

2. READ the report:
   - mission_analysis is the organization's mission in narrative form.
   - stakeholder_perspectives maps each stakeholder to how they see the organization.
   - recommendations maps each stakeholder to concrete improvements.
   - audit_score rates the audit on four dimensions from 1 to 10.
   An "Error" entry means the stage had nothing to work with; say so plainly
   instead of inventing content.

3. PRESENT a short summary: the mission in one sentence, the three most
   important recommendations, and the scores. Quote the report ID so the
   audit can be found again with kansa_report.`, url, url),
				},
			},
		},
	}, nil
}

func (s *Server) handleCompareAuditsPrompt(ctx context.Context, request mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	before := request.Params.Arguments["before"]
	after := request.Params.Arguments["after"]
	if before == "" || after == "" {
		return nil, fmt.Errorf("before and after arguments are required")
	}

	return &mcplib.GetPromptResult{
		Description: "Compare two archived audit reports",
		Messages: []mcplib.PromptMessage{
			{
				Role: mcplib.RoleUser,
				Content: mcplib.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Compare two audits of the same organization:

1. CALL kansa_report with id="%s" (earlier) and id="%s" (later).

2. COMPARE the mission analyses, the stakeholders named, the recommendations
   and each score dimension.

3. REPORT what improved, what regressed and which recommendations from the
   earlier audit no longer appear.`, before, after),
				},
			},
		},
	}, nil
}
