package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ribbon-tracker/internal/app"
	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ingest"
	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
)

// Returned after output was written, so the exit status reflects partial failures.
var (
	errDocumentsFailed = errors.New("some documents could not be processed")
	errStockFailed     = errors.New("some stock updates failed")
)

type cli struct {
	inmem   bool
	verbose bool
	logJSON bool

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "ribbon-batch",
		Short:         "Summarize ribbon orders and reconcile them against stock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if c.verbose {
				level = slog.LevelDebug
			}
			opts := &slog.HandlerOptions{Level: level}
			var h slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
			if c.logJSON {
				h = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
			}
			c.logger = slog.New(h)
			slog.SetDefault(c.logger)
			c.cfg = common.LoadConfig()
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&c.inmem, "inmem", false, "use an in-memory SQLite database instead of DB_URL")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.logJSON, "log-json", false, "write logs as JSON")

	root.AddCommand(
		c.summarizeCmd(),
		c.applyCmd(),
		c.stockCmd(),
		c.documentsCmd(),
		c.migrateCmd(),
	)
	return root
}

// open connects to the configured database, or an in-memory one when
// --inmem is set or inmem is true.
func (c *cli) open(ctx context.Context, inmem, migrate bool) (*app.App, error) {
	inmem = inmem || c.inmem
	if !inmem {
		if err := c.cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return app.New(ctx, c.cfg, app.Options{InMemory: inmem, Migrate: migrate}, c.logger)
}

// expand turns the arguments into document paths, walking directories.
func (c *cli) expand(args []string) ([]string, error) {
	paths, err := ingest.ExpandPaths(args, ingest.DiscoverOptions{SkipHidden: true})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no documents found in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

// outputPath resolves --out. "auto" names the report after the batch inside
// EXPORT_DIR.
func (c *cli) outputPath(out string, br pipeline.BatchReport) string {
	if out != "auto" {
		return out
	}
	return filepath.Join(c.cfg.Export.OutputDir, "ribbons-"+br.BatchID.String()+".xlsx")
}
