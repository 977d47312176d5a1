package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/kansa"
)

func (c *cli) auditCmd() *cobra.Command {
	var (
		source string
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit one organization's page",
		Long: `Fetch the page at <url>, run the mission, stakeholder, recommendation and
scoring stages, and print the report.

Social pages (--source social-page) are not scraped; the audit runs on a
placeholder and needs no fetch credential.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			var opts []kansa.Option
			if !save {
				opts = append(opts, kansa.WithoutArchive())
			}
			app, err := c.newApp(opts...)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(cmd.Context()) }()

			report, err := app.AuditReport(cmd.Context(), args[0], source)
			if err != nil {
				return describeAuditError(args[0], err)
			}
			return writeReport(c.stdout, format, report)
		},
	}
	cmd.Flags().StringVar(&source, "source", string(kansa.SourceWebsite), "Source kind: website or social-page")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&save, "save", true, "Archive the report when KANSA_DATABASE_URL is set")
	return cmd
}

// batchResult is one URL's outcome in a batch.
type batchResult struct {
	URL    string        `json:"url"`
	Report *kansa.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (c *cli) batchCmd() *cobra.Command {
	var (
		source      string
		format      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch <url>...",
		Short: "Audit several organizations in parallel",
		Long: `Audit every <url> independently. A failed audit is reported for its URL and
does not stop the others; the command exits non-zero if any audit failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
			}
			app, err := c.newApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(cmd.Context()) }()

			results := make([]batchResult, len(args))
			var g errgroup.Group
			g.SetLimit(concurrency)
			for i, url := range args {
				g.Go(func() error {
					results[i].URL = url
					report, err := app.AuditReport(cmd.Context(), url, source)
					if err != nil {
						results[i].Error = describeAuditError(url, err).Error()
						return nil
					}
					results[i].Report = &report
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			c.logger.Info("batch completed", "total", len(results), "failed", failed)

			if err := writeBatch(c.stdout, format, results); err != nil {
				return err
			}
			if failed > 0 {
				return errAuditsFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", string(kansa.SourceWebsite), "Source kind for every URL: website or social-page")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Maximum audits in flight")
	return cmd
}

func (c *cli) reportsCmd() *cobra.Command {
	reports := &cobra.Command{
		Use:   "reports",
		Short: "Read archived reports (requires KANSA_DATABASE_URL)",
	}

	var limit int
	var listFormat string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(listFormat); err != nil {
				return err
			}
			app, err := c.newApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(cmd.Context()) }()

			summaries, err := app.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if listFormat == "json" {
				return writeJSON(c.stdout, summaries)
			}
			return writeSummaries(c.stdout, summaries)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum reports to list")
	list.Flags().StringVar(&listFormat, "format", "text", "Output format: text or json")

	var showFormat string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(showFormat); err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid report id %q: %w", args[0], err)
			}
			app, err := c.newApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(cmd.Context()) }()

			report, err := app.GetReport(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeReport(c.stdout, showFormat, report)
		},
	}
	show.Flags().StringVar(&showFormat, "format", "text", "Output format: text or json")

	reports.AddCommand(list, show)
	return reports
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the audit over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.newApp()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close(cmd.Context()) }()
			return app.ServeMCP()
		},
	}
}

func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("--format must be text or json, got %q", format)
	}
}

// describeAuditError prefixes err with what kind of failure it was.
func describeAuditError(url string, err error) error {
	switch {
	case kansa.IsConfigurationError(err):
		return fmt.Errorf("audit %s: configuration error: %w", url, err)
	case kansa.IsFetchError(err):
		return fmt.Errorf("audit %s: fetch failed: %w", url, err)
	case kansa.IsAnalysisError(err):
		return fmt.Errorf("audit %s: analysis failed in %s stage: %w", url, kansa.FailedStage(err), err)
	default:
		return fmt.Errorf("audit %s: %w", url, err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummaries(w io.Writer, list []kansa.ReportSummary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No reports archived yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tSCORE\tURL")
	for _, s := range list {
		score := "-"
		if s.AverageScore != nil {
			score = fmt.Sprintf("%.1f", *s.AverageScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.SourceKind, score, s.URL)
	}
	return tw.Flush()
}
