// Command kansa audits a nonprofit's web presence from the command line and
// serves the same audit to MCP clients.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashita-ai/kansa"
	"github.com/ashita-ai/kansa/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// errAuditsFailed is returned by batch when at least one run failed. The
// per-URL failures have already been printed.
var errAuditsFailed = errors.New("one or more audits failed")

func main() {
	os.Exit(run0())
}

func run0() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := newCLI(os.Stdout, os.Stderr)
	err := c.rootCmd().ExecuteContext(ctx)
	if cerr := c.close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "close log file:", cerr)
	}
	if err != nil {
		if !errors.Is(err, errAuditsFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// cli holds the flags shared by every subcommand and the streams they write to.
type cli struct {
	stdout    io.Writer
	stderr    io.Writer
	logFormat string

	logger  *slog.Logger
	closeLn func() error
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr}
}

// close releases the log file opened for the command, if any. It runs after
// Execute returns, whether or not the command failed.
func (c *cli) close() error {
	if c.closeLn == nil {
		return nil
	}
	err := c.closeLn()
	c.closeLn = nil
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kansa",
		Short: "Audit a nonprofit's web presence",
		Long: `Kansa reads a nonprofit's website, asks a language model for a mission
analysis, stakeholder perspectives and recommendations, and scores the result.

Configuration comes from the environment (a .env file is loaded if present):
  LOCAL_LLM_BASE_URL, KANSA_LLM_MODEL  generation endpoint and model
  FIRECRAWL_API_KEY                    required for website audits in firecrawl mode
  KANSA_FETCH_MODE                     firecrawl (default) or direct
  KANSA_DATABASE_URL                   postgres:// or sqlite:// report archive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (non-fatal; production won't have one).
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, closeFn, err := newLogger(c.stderr, c.logFormat, cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			c.logger = logger
			c.closeLn = closeFn
			slog.SetDefault(logger)
			return nil
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "json", "Log format on stderr: json or text")

	root.AddCommand(c.auditCmd())
	root.AddCommand(c.batchCmd())
	root.AddCommand(c.reportsCmd())
	root.AddCommand(c.mcpCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Printing the version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, "kansa", version)
		},
	})
	return root
}

// newApp builds the audit App with the CLI's logger.
func (c *cli) newApp(opts ...kansa.Option) (*kansa.App, error) {
	base := []kansa.Option{kansa.WithLogger(c.logger), kansa.WithVersion(version)}
	return kansa.New(append(base, opts...)...)
}

// newLogger builds the process logger. Records go to w and, when logFile is
// set, are appended to that file too. The returned func closes the file.
func newLogger(w io.Writer, format, level, logFile string) (*slog.Logger, func() error, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		_ = closeFn()
		return nil, nil, fmt.Errorf("--log-format must be json or text, got %q", format)
	}
	return slog.New(h), closeFn, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("KANSA_LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
}
