// Package stock defines the ribbon stock store the reconciler writes to.
package stock

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a colour has no stock entry.
var ErrNotFound = errors.New("stock entry not found")

// Entry is the persisted quantity of one colour.
type Entry struct {
	Colour   string `json:"colour" db:"colour"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Store is the key/value view of ribbon stock. Implementations never create
// entries on Set for an unknown colour; callers check Get first.
type Store interface {
	Get(ctx context.Context, colour string) (int, error)
	Set(ctx context.Context, colour string, quantity int) error
	List(ctx context.Context) ([]Entry, error)
}

// Decrementer is implemented by stores that can read and decrement one
// colour atomically, typically inside a single transaction. ErrNotFound is
// returned, with nothing written, when the colour has no entry.
type Decrementer interface {
	Decrement(ctx context.Context, colour string, by int) (before, after int, err error)
}

// Seeder creates or replaces entries. It is used by administrative tooling,
// never by reconciliation.
type Seeder interface {
	Upsert(ctx context.Context, colour string, quantity int) error
}
