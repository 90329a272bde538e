// Package reconcile subtracts aggregated ribbon consumption from the stock
// store and reports the per-colour outcome.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

// Adjustment is the outcome for one colour. Before and After are nil when the
// colour is unresolved; After is nil when the write failed.
type Adjustment struct {
	Colour     string                     `json:"colour"`
	Before     *int                       `json:"before,omitempty"`
	Subtracted int                        `json:"subtracted"`
	After      *int                       `json:"after,omitempty"`
	Status     constants.AdjustmentStatus `json:"status"`
	Err        error                      `json:"-"`
}

// Error returns the failure message, or "" for applied and unresolved colours.
func (a Adjustment) Error() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// Result is the ordered list of adjustments of one run.
type Result struct {
	Adjustments []Adjustment `json:"adjustments"`
}

// Unresolved lists colours that had no stock entry.
func (r Result) Unresolved() []string {
	return r.colours(constants.AdjustmentUnresolved)
}

// Failed lists colours whose read or write failed.
func (r Result) Failed() []string {
	return r.colours(constants.AdjustmentFailed)
}

// Applied counts colours that were decremented and persisted.
func (r Result) Applied() int {
	return len(r.colours(constants.AdjustmentApplied))
}

func (r Result) colours(st constants.AdjustmentStatus) []string {
	var out []string
	for _, a := range r.Adjustments {
		if a.Status == st {
			out = append(out, a.Colour)
		}
	}
	return out
}

// Reconciler applies summaries to a stock store. Runs are serialized: two
// concurrent Apply calls never interleave their read-modify-write cycles.
// Apply is not idempotent; running it twice for the same documents
// decrements stock twice.
type Reconciler struct {
	store  stock.Store
	logger *slog.Logger
	mu     sync.Mutex
}

func NewReconciler(store stock.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger}
}

// Apply decrements every colour of the summary in ascending colour order.
// Missing colours are reported as unresolved and left untouched; a failure
// on one colour is recorded and the run continues. Stock may go negative.
func (r *Reconciler) Apply(ctx context.Context, summary ribbon.Summary) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{Adjustments: make([]Adjustment, 0, len(summary))}
	for _, colour := range summary.Colours() {
		adj := r.applyOne(ctx, colour, summary[colour])
		switch adj.Status {
		case constants.AdjustmentUnresolved:
			r.logger.Warn("colour not found in stock; skipped", "colour", colour, "quantity", adj.Subtracted)
		case constants.AdjustmentFailed:
			r.logger.Error("stock update failed", "colour", colour, "quantity", adj.Subtracted, "error", adj.Err)
		default:
			r.logger.Info("stock updated", "colour", colour, "before", *adj.Before, "subtracted", adj.Subtracted, "after", *adj.After)
		}
		res.Adjustments = append(res.Adjustments, adj)
	}
	r.logger.Info("reconcile.done",
		"colours", len(res.Adjustments),
		"applied", res.Applied(),
		"unresolved", len(res.Unresolved()),
		"failed", len(res.Failed()),
	)
	return res
}

func (r *Reconciler) applyOne(ctx context.Context, colour string, qty int) Adjustment {
	adj := Adjustment{Colour: colour, Subtracted: qty}

	if d, ok := r.store.(stock.Decrementer); ok {
		before, after, err := d.Decrement(ctx, colour, qty)
		switch {
		case errors.Is(err, stock.ErrNotFound):
			adj.Status = constants.AdjustmentUnresolved
		case err != nil:
			adj.Status, adj.Err = constants.AdjustmentFailed, err
		default:
			adj.Before, adj.After, adj.Status = &before, &after, constants.AdjustmentApplied
		}
		return adj
	}

	before, err := r.store.Get(ctx, colour)
	if errors.Is(err, stock.ErrNotFound) {
		adj.Status = constants.AdjustmentUnresolved
		return adj
	}
	if err != nil {
		adj.Status, adj.Err = constants.AdjustmentFailed, err
		return adj
	}
	adj.Before = &before
	after := before - qty
	if err := r.store.Set(ctx, colour, after); err != nil {
		adj.Status, adj.Err = constants.AdjustmentFailed, err
		return adj
	}
	adj.After = &after
	adj.Status = constants.AdjustmentApplied
	return adj
}
