package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/ashita-ai/kansa/internal/model"
)

const (
	recentReportsURI = "kansa://reports/recent"
	reportURIPrefix  = "kansa://reports/"
)

func (s *Server) registerResources() {
	// kansa://reports/recent: summaries of the most recent archived audits.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			recentReportsURI,
			"Recent Audit Reports",
			mcplib.WithResourceDescription("Summaries of the most recently archived audit reports"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleReportsRecent,
	)

	// kansa://reports/{id}: one archived report in full.
	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"kansa://reports/{id}",
			"Audit Report",
			mcplib.WithTemplateDescription("A single archived audit report"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handleReportResource,
	)
}

func (s *Server) handleReportsRecent(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	list := []model.ReportSummary{}
	if s.store != nil {
		got, err := s.store.ListReports(ctx, 20)
		if err != nil {
			return nil, fmt.Errorf("mcp: recent reports: %w", err)
		}
		if got != nil {
			list = got
		}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal reports: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      recentReportsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReportResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.store == nil {
		return nil, errors.New("mcp: report archive is not configured")
	}
	uri := request.Params.URI
	id, err := parseReportURI(uri)
	if err != nil {
		return nil, err
	}

	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mcp: report: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal report: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// parseReportURI extracts the report ID from kansa://reports/{id}.
func parseReportURI(uri string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(uri, reportURIPrefix)
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return uuid.Nil, fmt.Errorf("mcp: invalid report URI: %s", uri)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("mcp: invalid report id %q: %w", raw, err)
	}
	return id, nil
}
