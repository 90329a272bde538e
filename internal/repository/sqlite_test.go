package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func newInMemoryStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := OpenInMemory(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(stores.Close)
	return stores
}

func TestSQLiteRibbonRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should seed, read and list entries", func(t *testing.T) {
		s := newInMemoryStores(t)
		require.NoError(t, s.Ribbons.Upsert(ctx, "red", 10))
		require.NoError(t, s.Ribbons.Upsert(ctx, "navy", 4))
		require.NoError(t, s.Ribbons.Upsert(ctx, "red", 12))

		qty, err := s.Ribbons.Get(ctx, "red")
		require.NoError(t, err)
		assert.Equal(t, 12, qty)

		entries, err := s.Ribbons.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []stock.Entry{{Colour: "navy", Quantity: 4}, {Colour: "red", Quantity: 12}}, entries)
	})

	t.Run("Should never create entries on Set", func(t *testing.T) {
		s := newInMemoryStores(t)
		assert.ErrorIs(t, s.Ribbons.Set(ctx, "lime-green", 3), stock.ErrNotFound)
		_, err := s.Ribbons.Get(ctx, "lime-green")
		assert.ErrorIs(t, err, stock.ErrNotFound)
	})

	t.Run("Should allow stock to go negative", func(t *testing.T) {
		s := newInMemoryStores(t)
		require.NoError(t, s.Ribbons.Upsert(ctx, "gold", 2))
		before, after, err := s.Ribbons.Decrement(ctx, "gold", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, before)
		assert.Equal(t, -3, after)
	})

	t.Run("Should leave the store unchanged when decrementing an unknown colour", func(t *testing.T) {
		s := newInMemoryStores(t)
		require.NoError(t, s.Ribbons.Upsert(ctx, "gold", 2))
		_, _, err := s.Ribbons.Decrement(ctx, "silver", 1)
		assert.ErrorIs(t, err, stock.ErrNotFound)
		entries, err := s.Ribbons.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []stock.Entry{{Colour: "gold", Quantity: 2}}, entries)
	})

	t.Run("Should serialize concurrent decrements", func(t *testing.T) {
		s := newInMemoryStores(t)
		require.NoError(t, s.Ribbons.Upsert(ctx, "navy", 100))
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := s.Ribbons.Decrement(ctx, "navy", 2)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		qty, err := s.Ribbons.Get(ctx, "navy")
		require.NoError(t, err)
		assert.Equal(t, 60, qty)
	})
}

func TestSQLiteLedgerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Should record documents once per content hash", func(t *testing.T) {
		s := newInMemoryStores(t)
		batch := uuid.New()
		first := &entity.ProcessedDocument{
			ID: uuid.New(), ContentHash: "h1", Name: "a.pdf", Kind: "INVOICE",
			Items: 2, Units: 7, BatchID: batch,
			ReconciledAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		require.NoError(t, s.Ledger.Record(ctx, first))
		dup := *first
		dup.ID = uuid.New()
		dup.Name = "copy-of-a.pdf"
		require.NoError(t, s.Ledger.Record(ctx, &dup))

		ok, err := s.Ledger.Exists(ctx, "h1")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.Ledger.Exists(ctx, "h2")
		require.NoError(t, err)
		assert.False(t, ok)

		docs, err := s.Ledger.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, first.ID, docs[0].ID)
		assert.Equal(t, "a.pdf", docs[0].Name)
		assert.Equal(t, batch, docs[0].BatchID)
		assert.True(t, first.ReconciledAt.Equal(docs[0].ReconciledAt))
	})

	t.Run("Should answer existence checks on an empty ledger", func(t *testing.T) {
		s := newInMemoryStores(t)
		ok, err := s.Ledger.Exists(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should list newest first and honour the limit", func(t *testing.T) {
		s := newInMemoryStores(t)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, h := range []string{"h1", "h2", "h3"} {
			require.NoError(t, s.Ledger.Record(ctx, &entity.ProcessedDocument{
				ID: uuid.New(), ContentHash: h, Name: h + ".txt", Kind: "INVOICE",
				BatchID: uuid.New(), ReconciledAt: base.Add(time.Duration(i) * time.Hour),
			}))
		}
		docs, err := s.Ledger.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "h3", docs[0].ContentHash)
		assert.Equal(t, "h2", docs[1].ContentHash)
	})
}

func TestMigrateSQLite(t *testing.T) {
	t.Run("Should be safe to run twice", func(t *testing.T) {
		ctx := context.Background()
		db, err := OpenSQLite(ctx, ":memory:", nil)
		require.NoError(t, err)
		defer db.Close()
		require.NoError(t, MigrateSQLite(ctx, db, nil))
		require.NoError(t, MigrateSQLite(ctx, db, nil))
	})
}

func TestSQLiteDSN(t *testing.T) {
	t.Run("Should map empty and :memory: to an in-memory database", func(t *testing.T) {
		assert.Contains(t, sqliteDSN(""), "memory")
		assert.Equal(t, sqliteDSN(""), sqliteDSN(":memory:"))
	})
	t.Run("Should append pragmas to file paths", func(t *testing.T) {
		assert.Equal(t, "ribbons.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("ribbons.db"))
		assert.Equal(t, "file:r.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("file:r.db?mode=rwc"))
	})
	t.Run("Should keep caller pragmas", func(t *testing.T) {
		assert.Equal(t, "r.db?_pragma=foreign_keys(1)", sqliteDSN("r.db?_pragma=foreign_keys(1)"))
	})
}
