package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

// DB is the subset of pgxpool.Pool the Postgres repositories use. It is
// satisfied by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const ribbonsTable = "ribbons"

// RibbonRepository is a stock.Store that can also decrement atomically and
// seed entries.
type RibbonRepository interface {
	stock.Store
	stock.Decrementer
	stock.Seeder
}

type pgRibbonRepository struct {
	db     DB
	logger *slog.Logger
}

// NewRibbonRepository returns the Postgres-backed ribbon stock store.
func NewRibbonRepository(db DB, logger *slog.Logger) RibbonRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgRibbonRepository{db: db, logger: logger}
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *pgRibbonRepository) Get(ctx context.Context, colour string) (int, error) {
	query, args, err := psql().
		Select("quantity").
		From(ribbonsTable).
		Where(squirrel.Eq{"colour": colour}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build select: %w", err)
	}
	var qty int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&qty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, stock.ErrNotFound
		}
		r.logger.Error("failed to get ribbon stock", "colour", colour, "error", err)
		return 0, fmt.Errorf("get ribbon %q: %w", colour, err)
	}
	return qty, nil
}

func (r *pgRibbonRepository) Set(ctx context.Context, colour string, quantity int) error {
	return r.set(ctx, r.db, colour, quantity)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *pgRibbonRepository) set(ctx context.Context, db execer, colour string, quantity int) error {
	query, args, err := psql().
		Update(ribbonsTable).
		Set("quantity", quantity).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"colour": colour}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to set ribbon stock", "colour", colour, "quantity", quantity, "error", err)
		return fmt.Errorf("set ribbon %q: %w", colour, err)
	}
	if tag.RowsAffected() == 0 {
		return stock.ErrNotFound
	}
	return nil
}

func (r *pgRibbonRepository) List(ctx context.Context) ([]stock.Entry, error) {
	query, args, err := psql().
		Select("colour", "quantity").
		From(ribbonsTable).
		OrderBy("colour").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var entries []stock.Entry
	if err := pgxscan.Select(ctx, r.db, &entries, query, args...); err != nil {
		r.logger.Error("failed to list ribbon stock", "error", err)
		return nil, fmt.Errorf("list ribbons: %w", err)
	}
	return entries, nil
}

// Decrement locks the row, subtracts by and commits in one transaction.
func (r *pgRibbonRepository) Decrement(ctx context.Context, colour string, by int) (before, after int, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Warn("rollback failed", "colour", colour, "error", rbErr)
			}
		}
	}()

	query, args, err := psql().
		Select("quantity").
		From(ribbonsTable).
		Where(squirrel.Eq{"colour": colour}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build select: %w", err)
	}
	if err = tx.QueryRow(ctx, query, args...).Scan(&before); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = stock.ErrNotFound
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("lock ribbon %q: %w", colour, err)
	}
	after = before - by
	if err = r.set(ctx, tx, colour, after); err != nil {
		return before, 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return before, 0, fmt.Errorf("commit: %w", err)
	}
	return before, after, nil
}

func (r *pgRibbonRepository) Upsert(ctx context.Context, colour string, quantity int) error {
	query, args, err := psql().
		Insert(ribbonsTable).
		Columns("colour", "quantity").
		Values(colour, quantity).
		Suffix("ON CONFLICT (colour) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.Error("failed to upsert ribbon stock", "colour", colour, "error", err)
		return fmt.Errorf("upsert ribbon %q: %w", colour, err)
	}
	return nil
}
