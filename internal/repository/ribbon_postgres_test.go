package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func TestRibbonRepository_Get(t *testing.T) {
	t.Run("Should return the stored quantity", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectQuery("SELECT quantity FROM ribbons WHERE colour = \\$1").
			WithArgs("navy").
			WillReturnRows(mockPool.NewRows([]string{"quantity"}).AddRow(12))
		qty, err := repo.Get(context.Background(), "navy")
		require.NoError(t, err)
		assert.Equal(t, 12, qty)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should map a missing row to stock.ErrNotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectQuery("SELECT quantity FROM ribbons").
			WithArgs("lime-green").
			WillReturnRows(mockPool.NewRows([]string{"quantity"}))
		_, err = repo.Get(context.Background(), "lime-green")
		assert.ErrorIs(t, err, stock.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRibbonRepository_Set(t *testing.T) {
	t.Run("Should update an existing colour", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectExec("UPDATE ribbons SET quantity = \\$1, updated_at = now\\(\\) WHERE colour = \\$2").
			WithArgs(7, "red").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		require.NoError(t, repo.Set(context.Background(), "red", 7))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should report an unknown colour without creating it", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectExec("UPDATE ribbons").
			WithArgs(7, "teal").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		assert.ErrorIs(t, repo.Set(context.Background(), "teal", 7), stock.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRibbonRepository_List(t *testing.T) {
	t.Run("Should scan entries ordered by colour", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectQuery("SELECT colour, quantity FROM ribbons ORDER BY colour").
			WillReturnRows(mockPool.NewRows([]string{"colour", "quantity"}).
				AddRow("navy", 3).
				AddRow("red", -2))
		entries, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []stock.Entry{{Colour: "navy", Quantity: 3}, {Colour: "red", Quantity: -2}}, entries)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRibbonRepository_Decrement(t *testing.T) {
	t.Run("Should lock, update and commit", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT quantity FROM ribbons WHERE colour = \\$1 FOR UPDATE").
			WithArgs("navy").
			WillReturnRows(mockPool.NewRows([]string{"quantity"}).AddRow(10))
		mockPool.ExpectExec("UPDATE ribbons").
			WithArgs(4, "navy").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()
		before, after, err := repo.Decrement(context.Background(), "navy", 6)
		require.NoError(t, err)
		assert.Equal(t, 10, before)
		assert.Equal(t, 4, after)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should roll back when the colour is missing", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT quantity FROM ribbons").
			WithArgs("lime-green").
			WillReturnRows(mockPool.NewRows([]string{"quantity"}))
		mockPool.ExpectRollback()
		_, _, err = repo.Decrement(context.Background(), "lime-green", 1)
		assert.ErrorIs(t, err, stock.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should roll back when the update fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("SELECT quantity FROM ribbons").
			WithArgs("red").
			WillReturnRows(mockPool.NewRows([]string{"quantity"}).AddRow(5))
		mockPool.ExpectExec("UPDATE ribbons").
			WithArgs(3, "red").
			WillReturnError(errors.New("disk full"))
		mockPool.ExpectRollback()
		before, _, err := repo.Decrement(context.Background(), "red", 2)
		require.Error(t, err)
		assert.Equal(t, 5, before)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRibbonRepository_Upsert(t *testing.T) {
	t.Run("Should insert with an on-conflict update", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewRibbonRepository(mockPool, nil)
		mockPool.ExpectExec("INSERT INTO ribbons \\(colour,quantity\\) VALUES \\(\\$1,\\$2\\) ON CONFLICT \\(colour\\) DO UPDATE").
			WithArgs("navy", 40).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		require.NoError(t, repo.Upsert(context.Background(), "navy", 40))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestLedgerRepository(t *testing.T) {
	t.Run("Should check existence by content hash", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewLedgerRepository(mockPool, nil)
		mockPool.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM processed_documents WHERE content_hash = \\$1\\)").
			WithArgs("abc").
			WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(true))
		ok, err := repo.Exists(context.Background(), "abc")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should record a document ignoring duplicates", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewLedgerRepository(mockPool, nil)
		doc := &entity.ProcessedDocument{
			ID:           uuid.New(),
			ContentHash:  "abc",
			Name:         "orders.pdf",
			Kind:         "ORDER_EXPORT",
			Items:        3,
			Units:        9,
			BatchID:      uuid.New(),
			ReconciledAt: time.Now(),
		}
		mockPool.ExpectExec("INSERT INTO processed_documents (.+) ON CONFLICT \\(content_hash\\) DO NOTHING").
			WithArgs(doc.ID, doc.ContentHash, doc.Name, doc.Kind, doc.Items, doc.Units, doc.BatchID, doc.ReconciledAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		require.NoError(t, repo.Record(context.Background(), doc))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should list the newest documents first", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := NewLedgerRepository(mockPool, nil)
		id, batch := uuid.New(), uuid.New()
		at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		mockPool.ExpectQuery("SELECT (.+) FROM processed_documents ORDER BY reconciled_at DESC, name LIMIT 5").
			WillReturnRows(mockPool.NewRows(documentColumns).
				AddRow(id, "abc", "orders.pdf", "ORDER_EXPORT", 3, 9, batch, at))
		docs, err := repo.List(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, id, docs[0].ID)
		assert.Equal(t, batch, docs[0].BatchID)
		assert.Equal(t, at, docs[0].ReconciledAt)
		assert.Equal(t, 9, docs[0].Units)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
