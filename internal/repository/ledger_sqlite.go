package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
)

type sqliteLedgerRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewSQLiteLedgerRepository(drv *entsql.Driver, logger *slog.Logger) LedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqliteLedgerRepository{drv: drv, logger: logger}
}

func (r *sqliteLedgerRepository) Exists(ctx context.Context, contentHash string) (bool, error) {
	query, args := sqlite().
		Select("content_hash").
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("content_hash", contentHash)).
		Limit(1).
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to check ledger", "content_hash", contentHash, "error", err)
		return false, fmt.Errorf("check ledger: %w", err)
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("check ledger: %w", err)
	}
	return found, nil
}

func (r *sqliteLedgerRepository) Record(ctx context.Context, doc *entity.ProcessedDocument) error {
	reconciledAt := doc.ReconciledAt
	if reconciledAt.IsZero() {
		reconciledAt = time.Now()
	}
	query, args := sqlite().
		Insert(documentsTable).
		Columns(documentColumns...).
		Values(
			doc.ID.String(), doc.ContentHash, doc.Name, doc.Kind,
			doc.Items, doc.Units, doc.BatchID.String(),
			formatTime(reconciledAt),
		).
		OnConflict(entsql.ConflictColumns("content_hash"), entsql.DoNothing()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to record document", "name", doc.Name, "content_hash", doc.ContentHash, "error", err)
		return fmt.Errorf("record document: %w", err)
	}
	r.logger.Debug("document recorded", "name", doc.Name, "batch_id", doc.BatchID)
	return nil
}

func (r *sqliteLedgerRepository) List(ctx context.Context, limit int) ([]*entity.ProcessedDocument, error) {
	sel := sqlite().
		Select(documentColumns...).
		From(entsql.Table(documentsTable)).
		OrderBy(entsql.Desc("reconciled_at"), "name")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.ProcessedDocument
	for rows.Next() {
		var (
			d                 entity.ProcessedDocument
			id, batch, atText string
		)
		if err := rows.Scan(&id, &d.ContentHash, &d.Name, &d.Kind, &d.Items, &d.Units, &batch, &atText); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var err error
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse document id %q: %w", id, err)
		}
		if d.BatchID, err = uuid.Parse(batch); err != nil {
			return nil, fmt.Errorf("parse batch id %q: %w", batch, err)
		}
		if d.ReconciledAt, err = time.Parse(sqliteTimeLayout, atText); err != nil {
			return nil, fmt.Errorf("parse reconciled_at %q: %w", atText, err)
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
