package ports

import (
	"context"

	"github.com/aretw0/actionchain/pkg/domain"
)

// Transaction is an opaque scope token handed to actions.
// Whoever created the handle is responsible for committing or rolling it back.
type Transaction interface {
	ID() string
	Status() domain.TxStatus
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager creates transaction handles.
// Implementations must serialize every data-mutating call made through the
// same handle onto the same underlying resource.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// RowWriter is the optional capability of a transaction to stage row changes.
// Staged changes become visible only when the transaction commits.
type RowWriter interface {
	Write(ctx context.Context, entity string, key string, rows []domain.Row) error
	Remove(ctx context.Context, entity string, keys []string) error
}

// Unwrapper is implemented by handles that decorate another handle.
type Unwrapper interface {
	Unwrap() Transaction
}

// WriterOf returns the RowWriter behind tx, looking through decorating handles.
func WriterOf(tx Transaction) (RowWriter, bool) {
	for tx != nil {
		if w, ok := tx.(RowWriter); ok {
			return w, true
		}
		u, ok := tx.(Unwrapper)
		if !ok {
			return nil, false
		}
		tx = u.Unwrap()
	}
	return nil, false
}
