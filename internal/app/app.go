// Package app wires configuration, storage and the batch processor for the
// binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/export"
	"github.com/joseph-ayodele/ribbon-tracker/internal/extract"
	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	repo "github.com/joseph-ayodele/ribbon-tracker/internal/repository"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
)

// App holds the long-lived components shared by the CLI and the daemon.
type App struct {
	Config    *common.Config
	Stores    *repo.Stores
	Processor *pipeline.Processor
	Exporter  *export.Service
	Logger    *slog.Logger
}

// Options tweaks how the database is opened.
type Options struct {
	// InMemory ignores the configured database and uses a private in-memory
	// SQLite store, migrated on open.
	InMemory bool
	// Migrate applies migrations even when DB_AUTO_MIGRATE is off.
	Migrate bool
}

// New opens the database and builds the processor. The caller must Close the App.
func New(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	limits := ribbon.Limits{
		OrderIDLookahead:     cfg.Extraction.OrderIDLookahead,
		HeaderLookahead:      cfg.Extraction.HeaderLookahead,
		ContinuationMaxWords: cfg.Extraction.ContinuationMaxWords,
	}.WithDefaults()
	if err := limits.Validate(); err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "invalid extraction limits", err)
	}

	var (
		stores *repo.Stores
		err    error
	)
	if opts.InMemory {
		logger.Info("using in-memory SQLite database")
		stores, err = repo.OpenInMemory(ctx, logger)
	} else {
		dbCfg := cfg.Database
		dbCfg.AutoMigrate = dbCfg.AutoMigrate || opts.Migrate
		stores, err = ConnectDB(ctx, dbCfg, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	source := extract.NewLinearizer(extract.Config{
		PDFConverter:     cfg.Extraction.PDFConverter,
		ConverterTimeout: cfg.Extraction.ConverterTimeout,
	}, logger)
	proc := pipeline.NewProcessor(
		source,
		ribbon.NewExtractor(limits, logger),
		reconcile.NewReconciler(stores.Ribbons, logger),
		logger,
		pipeline.WithLedger(stores.Ledger),
		pipeline.WithParallelism(cfg.Extraction.Parallelism),
	)

	return &App{
		Config:    cfg,
		Stores:    stores,
		Processor: proc,
		Exporter:  export.NewService(stores.Ribbons, logger),
		Logger:    logger,
	}, nil
}

// Close releases the database connections.
func (a *App) Close() {
	if a.Stores != nil {
		a.Stores.Close()
	}
}

// ConnectDB opens the configured stock database and builds its repositories.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver, "migrate", cfg.AutoMigrate)
	stores, err := repo.Connect(ctx, repo.Options{
		Driver:  cfg.Driver,
		Migrate: cfg.AutoMigrate,
		Config: repo.Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	logger.Info("successfully connected to database", "driver", stores.Driver)
	return stores, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, stores *repo.Stores, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := stores.Ping(ctx, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
