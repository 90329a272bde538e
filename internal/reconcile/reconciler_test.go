package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func intPtr(v int) *int { return &v }

func TestReconciler_Apply(t *testing.T) {
	t.Run("Should decrement known colours in sorted order", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 100, "red-white": 20})
		r := NewReconciler(store, nil)

		res := r.Apply(context.Background(), ribbon.Summary{"red-white": 14, "gold": 51})

		require.Len(t, res.Adjustments, 2)
		assert.Equal(t, Adjustment{Colour: "gold", Before: intPtr(100), Subtracted: 51, After: intPtr(49), Status: constants.AdjustmentApplied}, res.Adjustments[0])
		assert.Equal(t, "red-white", res.Adjustments[1].Colour)
		assert.Equal(t, 2, res.Applied())

		q, err := store.Get(context.Background(), "gold")
		require.NoError(t, err)
		assert.Equal(t, 49, q)
	})

	t.Run("Should report unresolved colours without touching the store", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 5})
		r := NewReconciler(store, nil)

		res := r.Apply(context.Background(), ribbon.Summary{"lime-green": 3})

		require.Len(t, res.Adjustments, 1)
		adj := res.Adjustments[0]
		assert.Nil(t, adj.Before)
		assert.Nil(t, adj.After)
		assert.Equal(t, 3, adj.Subtracted)
		assert.Equal(t, constants.AdjustmentUnresolved, adj.Status)
		assert.Equal(t, []string{"lime-green"}, res.Unresolved())

		entries, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []stock.Entry{{Colour: "gold", Quantity: 5}}, entries)
	})

	t.Run("Should report a colourless invoice line as unresolved", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 60})
		res := NewReconciler(store, nil).Apply(context.Background(), ribbon.Summary{"": 40, "gold": 50})
		require.Len(t, res.Adjustments, 2)
		assert.Equal(t, []string{""}, res.Unresolved())
		assert.Equal(t, 1, res.Applied())
		q, err := store.Get(context.Background(), "gold")
		require.NoError(t, err)
		assert.Equal(t, 10, q)
	})

	t.Run("Should let stock go negative", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 2})
		res := NewReconciler(store, nil).Apply(context.Background(), ribbon.Summary{"gold": 5})
		require.Len(t, res.Adjustments, 1)
		assert.Equal(t, -3, *res.Adjustments[0].After)
	})

	t.Run("Should record a failed write and continue with other colours", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 10, "silver": 10})
		boom := errors.New("disk full")
		store.SetErr = func(colour string) error {
			if colour == "gold" {
				return boom
			}
			return nil
		}

		res := NewReconciler(store, nil).Apply(context.Background(), ribbon.Summary{"gold": 1, "silver": 2})

		require.Len(t, res.Adjustments, 2)
		gold := res.Adjustments[0]
		assert.Equal(t, constants.AdjustmentFailed, gold.Status)
		assert.ErrorIs(t, gold.Err, boom)
		assert.Equal(t, "disk full", gold.Error())
		assert.Equal(t, 10, *gold.Before)
		assert.Nil(t, gold.After)
		assert.Equal(t, constants.AdjustmentApplied, res.Adjustments[1].Status)
		assert.Equal(t, []string{"gold"}, res.Failed())

		q, _ := store.Get(context.Background(), "silver")
		assert.Equal(t, 8, q)
	})

	t.Run("Should decrement twice when applied twice", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 10})
		r := NewReconciler(store, nil)
		r.Apply(context.Background(), ribbon.Summary{"gold": 3})
		r.Apply(context.Background(), ribbon.Summary{"gold": 3})
		q, _ := store.Get(context.Background(), "gold")
		assert.Equal(t, 4, q)
	})

	t.Run("Should serialize concurrent runs", func(t *testing.T) {
		store := stock.NewMemoryStore(map[string]int{"gold": 1000})
		r := NewReconciler(store, nil)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Apply(context.Background(), ribbon.Summary{"gold": 2})
			}()
		}
		wg.Wait()
		q, _ := store.Get(context.Background(), "gold")
		assert.Equal(t, 900, q)
	})
}

type decrementingStore struct {
	*stock.MemoryStore
	calls []string
	err   error
}

func (d *decrementingStore) Decrement(ctx context.Context, colour string, by int) (int, int, error) {
	d.calls = append(d.calls, colour)
	if d.err != nil {
		return 0, 0, d.err
	}
	before, err := d.Get(ctx, colour)
	if err != nil {
		return 0, 0, err
	}
	return before, before - by, d.Set(ctx, colour, before-by)
}

func TestReconciler_ApplyWithDecrementer(t *testing.T) {
	t.Run("Should prefer the atomic decrement when the store offers it", func(t *testing.T) {
		store := &decrementingStore{MemoryStore: stock.NewMemoryStore(map[string]int{"gold": 10})}
		res := NewReconciler(store, nil).Apply(context.Background(), ribbon.Summary{"gold": 4, "teal": 1})

		assert.Equal(t, []string{"gold", "teal"}, store.calls)
		require.Len(t, res.Adjustments, 2)
		assert.Equal(t, 6, *res.Adjustments[0].After)
		assert.Equal(t, constants.AdjustmentUnresolved, res.Adjustments[1].Status)
	})

	t.Run("Should report decrement errors as failures", func(t *testing.T) {
		store := &decrementingStore{MemoryStore: stock.NewMemoryStore(nil), err: errors.New("tx aborted")}
		res := NewReconciler(store, nil).Apply(context.Background(), ribbon.Summary{"gold": 4})
		require.Len(t, res.Adjustments, 1)
		assert.Equal(t, constants.AdjustmentFailed, res.Adjustments[0].Status)
		assert.Nil(t, res.Adjustments[0].Before)
	})
}
