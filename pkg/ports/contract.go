package ports

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LoadFunc reads back the committed rows of an entity.
type LoadFunc func(ctx context.Context, entity string) (*domain.Dataset, error)

// RunTransactionManagerContract runs a suite of tests to verify that a
// TransactionManager and the handles it creates adhere to the interface contract.
// Entities are prefixed with prefix so that suites can share a backend.
func RunTransactionManagerContract(t *testing.T, mgr TransactionManager, load LoadFunc, prefix string) {
	ctx := context.Background()

	begin := func(t *testing.T) (Transaction, RowWriter) {
		t.Helper()
		tx, err := mgr.Begin(ctx)
		require.NoError(t, err, "Begin should not return error")
		w, ok := WriterOf(tx)
		require.True(t, ok, "handle should stage row writes")
		return tx, w
	}

	valueOf := func(ds *domain.Dataset, key, field string) string {
		for _, row := range ds.Rows {
			if ds.KeyOf(row) == key {
				return fmt.Sprint(row[field])
			}
		}
		return ""
	}

	t.Run("Begin Returns Open Unique Handles", func(t *testing.T) {
		a, _ := begin(t)
		b, _ := begin(t)
		defer a.Rollback(ctx)
		defer b.Rollback(ctx)

		assert.Equal(t, domain.TxOpen, a.Status())
		assert.NotEmpty(t, a.ID())
		assert.NotEqual(t, a.ID(), b.ID())
	})

	t.Run("Writes Are Visible Only After Commit", func(t *testing.T) {
		entity := prefix + "ORDER"
		tx, w := begin(t)

		require.NoError(t, w.Write(ctx, entity, "id", []domain.Row{{"id": "1", "total": 10}, {"id": "2", "total": 20}}))

		before, err := load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, 0, before.Len(), "staged rows must not leak before commit")

		require.NoError(t, tx.Commit(ctx))
		assert.Equal(t, domain.TxCommitted, tx.Status())

		after, err := load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, 2, after.Len())
		assert.Equal(t, "20", valueOf(after, "2", "total"))
	})

	t.Run("Rollback Discards Writes", func(t *testing.T) {
		entity := prefix + "CUSTOMER"
		tx, w := begin(t)

		require.NoError(t, w.Write(ctx, entity, "id", []domain.Row{{"id": "c1", "name": "Ada"}}))
		require.NoError(t, tx.Rollback(ctx))
		assert.Equal(t, domain.TxRolledBack, tx.Status())

		ds, err := load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, 0, ds.Len())
	})

	t.Run("Remove Deletes On Commit", func(t *testing.T) {
		entity := prefix + "INVOICE"
		seed, w := begin(t)
		require.NoError(t, w.Write(ctx, entity, "id", []domain.Row{{"id": "i1"}, {"id": "i2"}}))
		require.NoError(t, seed.Commit(ctx))

		tx, w := begin(t)
		require.NoError(t, w.Remove(ctx, entity, []string{"i1"}))
		require.NoError(t, tx.Commit(ctx))

		ds, err := load(ctx, entity)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, "i2", ds.KeyOf(ds.Rows[0]))
	})

	t.Run("Closed Handles Reject Reuse", func(t *testing.T) {
		tx, w := begin(t)
		require.NoError(t, tx.Commit(ctx))

		assert.ErrorIs(t, tx.Commit(ctx), domain.ErrTransactionClosed)
		assert.ErrorIs(t, tx.Rollback(ctx), domain.ErrTransactionClosed)
		assert.ErrorIs(t, w.Write(ctx, prefix+"ORDER", "id", []domain.Row{{"id": "x"}}), domain.ErrTransactionClosed)
	})

	t.Run("Rows Without Key Are Rejected", func(t *testing.T) {
		tx, w := begin(t)
		defer tx.Rollback(ctx)

		assert.Error(t, w.Write(ctx, prefix+"ORDER", "id", []domain.Row{{"name": "no key"}}))
	})
}
