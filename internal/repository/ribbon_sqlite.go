package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

type sqliteRibbonRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

// NewSQLiteRibbonRepository returns a ribbon stock store on an ent SQL
// driver opened with the SQLite dialect.
func NewSQLiteRibbonRepository(drv *entsql.Driver, logger *slog.Logger) RibbonRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqliteRibbonRepository{drv: drv, logger: logger}
}

func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// sqliteTimeLayout is fixed width so stored timestamps sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nowText() string {
	return formatTime(time.Now())
}

func (r *sqliteRibbonRepository) Get(ctx context.Context, colour string) (int, error) {
	qty, err := getQuantity(ctx, r.drv, colour)
	if err != nil && !errors.Is(err, stock.ErrNotFound) {
		r.logger.Error("failed to get ribbon stock", "colour", colour, "error", err)
	}
	return qty, err
}

func getQuantity(ctx context.Context, q dialect.ExecQuerier, colour string) (int, error) {
	query, args := sqlite().
		Select("quantity").
		From(entsql.Table(ribbonsTable)).
		Where(entsql.EQ("colour", colour)).
		Query()
	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("get ribbon %q: %w", colour, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("get ribbon %q: %w", colour, err)
		}
		return 0, stock.ErrNotFound
	}
	var qty int
	if err := rows.Scan(&qty); err != nil {
		return 0, fmt.Errorf("scan ribbon %q: %w", colour, err)
	}
	return qty, nil
}

func setQuantity(ctx context.Context, ex dialect.ExecQuerier, colour string, quantity int) error {
	query, args := sqlite().
		Update(ribbonsTable).
		Set("quantity", quantity).
		Set("updated_at", nowText()).
		Where(entsql.EQ("colour", colour)).
		Query()
	var res entsql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("set ribbon %q: %w", colour, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set ribbon %q: %w", colour, err)
	}
	if n == 0 {
		return stock.ErrNotFound
	}
	return nil
}

func (r *sqliteRibbonRepository) Set(ctx context.Context, colour string, quantity int) error {
	err := setQuantity(ctx, r.drv, colour, quantity)
	if err != nil && !errors.Is(err, stock.ErrNotFound) {
		r.logger.Error("failed to set ribbon stock", "colour", colour, "quantity", quantity, "error", err)
	}
	return err
}

func (r *sqliteRibbonRepository) List(ctx context.Context) ([]stock.Entry, error) {
	query, args := sqlite().
		Select("colour", "quantity").
		From(entsql.Table(ribbonsTable)).
		OrderBy("colour").
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to list ribbon stock", "error", err)
		return nil, fmt.Errorf("list ribbons: %w", err)
	}
	defer rows.Close()
	var entries []stock.Entry
	for rows.Next() {
		var e stock.Entry
		if err := rows.Scan(&e.Colour, &e.Quantity); err != nil {
			return nil, fmt.Errorf("scan ribbon: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ribbons: %w", err)
	}
	return entries, nil
}

// Decrement reads and writes the colour inside one transaction.
func (r *sqliteRibbonRepository) Decrement(ctx context.Context, colour string, by int) (before, after int, err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Warn("rollback failed", "colour", colour, "error", rbErr)
			}
		}
	}()
	if before, err = getQuantity(ctx, tx, colour); err != nil {
		return 0, 0, err
	}
	after = before - by
	if err = setQuantity(ctx, tx, colour, after); err != nil {
		return before, 0, err
	}
	if err = tx.Commit(); err != nil {
		return before, 0, fmt.Errorf("commit: %w", err)
	}
	return before, after, nil
}

func (r *sqliteRibbonRepository) Upsert(ctx context.Context, colour string, quantity int) error {
	query, args := sqlite().
		Insert(ribbonsTable).
		Columns("colour", "quantity", "updated_at").
		Values(colour, quantity, nowText()).
		OnConflict(entsql.ConflictColumns("colour"), entsql.ResolveWithNewValues()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to upsert ribbon stock", "colour", colour, "error", err)
		return fmt.Errorf("upsert ribbon %q: %w", colour, err)
	}
	return nil
}
