package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedDocument is a ledger row: one source document whose line items
// have been applied to stock.
type ProcessedDocument struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ContentHash  string    `json:"content_hash" db:"content_hash"`
	Name         string    `json:"name" db:"name"`
	Kind         string    `json:"kind" db:"kind"`
	Items        int       `json:"items" db:"items"`
	Units        int       `json:"units" db:"units"`
	BatchID      uuid.UUID `json:"batch_id" db:"batch_id"`
	ReconciledAt time.Time `json:"reconciled_at" db:"reconciled_at"`
}
