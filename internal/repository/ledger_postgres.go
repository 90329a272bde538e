package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
)

const documentsTable = "processed_documents"

var documentColumns = []string{
	"id", "content_hash", "name", "kind", "items", "units", "batch_id", "reconciled_at",
}

// LedgerRepository records which documents have already been applied to
// stock, keyed by content hash.
type LedgerRepository interface {
	// Exists reports whether a document with this content hash was applied.
	Exists(ctx context.Context, contentHash string) (bool, error)
	// Record stores doc. Recording an already known hash is a no-op.
	Record(ctx context.Context, doc *entity.ProcessedDocument) error
	// List returns the most recently reconciled documents first.
	List(ctx context.Context, limit int) ([]*entity.ProcessedDocument, error)
}

type pgLedgerRepository struct {
	db     DB
	logger *slog.Logger
}

func NewLedgerRepository(db DB, logger *slog.Logger) LedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgLedgerRepository{db: db, logger: logger}
}

func (r *pgLedgerRepository) Exists(ctx context.Context, contentHash string) (bool, error) {
	sub, args, err := psql().
		Select("1").
		From(documentsTable).
		Where(squirrel.Eq{"content_hash": contentHash}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+sub+")", args...).Scan(&exists); err != nil {
		r.logger.Error("failed to check ledger", "content_hash", contentHash, "error", err)
		return false, fmt.Errorf("check ledger: %w", err)
	}
	return exists, nil
}

func (r *pgLedgerRepository) Record(ctx context.Context, doc *entity.ProcessedDocument) error {
	query, args, err := psql().
		Insert(documentsTable).
		Columns(documentColumns...).
		Values(doc.ID, doc.ContentHash, doc.Name, doc.Kind, doc.Items, doc.Units, doc.BatchID, doc.ReconciledAt).
		Suffix("ON CONFLICT (content_hash) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.Error("failed to record document", "name", doc.Name, "content_hash", doc.ContentHash, "error", err)
		return fmt.Errorf("record document: %w", err)
	}
	r.logger.Debug("document recorded", "name", doc.Name, "batch_id", doc.BatchID)
	return nil
}

func (r *pgLedgerRepository) List(ctx context.Context, limit int) ([]*entity.ProcessedDocument, error) {
	sb := psql().
		Select(documentColumns...).
		From(documentsTable).
		OrderBy("reconciled_at DESC", "name")
	if limit > 0 {
		sb = sb.Limit(uint64(limit))
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var docs []*entity.ProcessedDocument
	if err := pgxscan.Select(ctx, r.db, &docs, query, args...); err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
