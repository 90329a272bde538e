package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Stores bundles the ribbon store and document ledger of one database.
type Stores struct {
	Driver  string
	Ribbons RibbonRepository
	Ledger  LedgerRepository

	pool   *pgxpool.Pool
	sqlDB  *sql.DB
	logger *slog.Logger
}

// Options selects and configures the backing database.
type Options struct {
	Driver string
	Config Config
	// Migrate applies embedded migrations after connecting.
	Migrate bool
}

// Connect opens the configured database and builds its repositories.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch opts.Driver {
	case "postgres", "":
		if opts.Migrate {
			if err := MigratePostgres(ctx, opts.Config.DSN, logger); err != nil {
				return nil, err
			}
		}
		pool, err := Open(ctx, opts.Config, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:  "postgres",
			Ribbons: NewRibbonRepository(pool, logger),
			Ledger:  NewLedgerRepository(pool, logger),
			pool:    pool,
			logger:  logger,
		}, nil
	case "sqlite":
		db, err := OpenSQLite(ctx, opts.Config.DSN, logger)
		if err != nil {
			return nil, err
		}
		return newSQLiteStores(ctx, db, opts.Migrate, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// OpenInMemory returns migrated stores on a private in-memory SQLite database.
func OpenInMemory(ctx context.Context, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := OpenSQLite(ctx, ":memory:", logger)
	if err != nil {
		return nil, err
	}
	return newSQLiteStores(ctx, db, true, logger)
}

func newSQLiteStores(ctx context.Context, db *sql.DB, migrate bool, logger *slog.Logger) (*Stores, error) {
	if migrate {
		if err := MigrateSQLite(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	drv := entsql.OpenDB(dialect.SQLite, db)
	return &Stores{
		Driver:  "sqlite",
		Ribbons: NewSQLiteRibbonRepository(drv, logger),
		Ledger:  NewSQLiteLedgerRepository(drv, logger),
		sqlDB:   db,
		logger:  logger,
	}, nil
}

// Ping checks the database is reachable within timeout.
func (s *Stores) Ping(ctx context.Context, timeout time.Duration) error {
	if s.pool != nil {
		return HealthCheck(ctx, s.pool, timeout, s.logger)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.sqlDB.PingContext(ctx)
}

// Close closes the database connections gracefully
func (s *Stores) Close() {
	s.logger.Info("closing database connections")
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sqlDB != nil {
		if err := s.sqlDB.Close(); err != nil {
			s.logger.Error("failed to close sqlite database", "error", err)
		}
	}
	s.logger.Info("database connections closed")
}
