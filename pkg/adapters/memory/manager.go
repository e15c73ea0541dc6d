package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/google/uuid"
)

// Manager implements ports.TransactionManager over a Store.
type Manager struct {
	store *Store
}

// NewManager creates a transaction manager writing to store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Store returns the backing store.
func (m *Manager) Store() *Store {
	return m.store
}

// Begin opens a new transaction.
func (m *Manager) Begin(ctx context.Context) (ports.Transaction, error) {
	return &Tx{
		id:     uuid.NewString(),
		store:  m.store,
		status: domain.TxOpen,
	}, nil
}

// Load returns the committed rows of entity.
func (m *Manager) Load(ctx context.Context, entity string) (*domain.Dataset, error) {
	return m.store.Load(entity), nil
}

// Tx buffers row changes until it is committed.
type Tx struct {
	id    string
	store *Store

	mu     sync.Mutex
	ops    []op
	status domain.TxStatus
}

func (t *Tx) ID() string { return t.id }

func (t *Tx) Status() domain.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Write stages an upsert of rows, identified by their keyCol value.
func (t *Tx) Write(ctx context.Context, entity, keyCol string, rows []domain.Row) error {
	staged := make([]op, 0, len(rows))
	for i, row := range rows {
		v, ok := row[keyCol]
		if !ok || v == nil {
			return fmt.Errorf("row %d of %s has no %q key", i, entity, keyCol)
		}
		staged = append(staged, op{entity: entity, keyCol: keyCol, key: fmt.Sprint(v), row: row.Clone()})
	}
	return t.stage(staged)
}

// Remove stages the deletion of keys.
func (t *Tx) Remove(ctx context.Context, entity string, keys []string) error {
	staged := make([]op, 0, len(keys))
	for _, k := range keys {
		staged = append(staged, op{entity: entity, key: k})
	}
	return t.stage(staged)
}

// Pending is the number of staged changes.
func (t *Tx) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	t.store.apply(t.ops)
	t.ops = nil
	t.status = domain.TxCommitted
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	t.ops = nil
	t.status = domain.TxRolledBack
	return nil
}

func (t *Tx) stage(ops []op) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	t.ops = append(t.ops, ops...)
	return nil
}
