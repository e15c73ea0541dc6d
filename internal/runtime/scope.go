package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
)

// scope assigns transaction handles to the steps of one run.
//
// In single-transaction mode every step gets the same handle, wrapped so that
// actions cannot commit or roll it back. The handle comes from the caller or,
// when the caller supplied none, is created here and then owned by the run.
// In independent mode every step gets a fresh handle from the manager.
type scope struct {
	single  bool
	manager ports.TransactionManager
	shared  ports.Transaction
	owned   bool
}

func openScope(ctx context.Context, single bool, manager ports.TransactionManager, caller ports.Transaction) (*scope, error) {
	s := &scope{single: single, manager: manager}
	if !single {
		return s, nil
	}

	if caller != nil {
		s.shared = caller
		return s, nil
	}

	if manager == nil {
		return nil, domain.ErrNoTransactionManager
	}
	tx, err := manager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin chain transaction: %w", err)
	}
	s.shared = tx
	s.owned = true
	return s, nil
}

// acquire returns the handle step invocations run under.
func (s *scope) acquire(ctx context.Context) (ports.Transaction, error) {
	if s.single {
		return sharedTx{s.shared}, nil
	}
	if s.manager == nil {
		return nil, domain.ErrNoTransactionManager
	}
	tx, err := s.manager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin step transaction: %w", err)
	}
	return tx, nil
}

// release closes a per-step handle the action left open: commit on success,
// rollback on failure. Shared handles are left to their owner.
func (s *scope) release(ctx context.Context, tx ports.Transaction, failed bool) error {
	if s.single || tx == nil || tx.Status().Closed() {
		return nil
	}
	if failed {
		return tx.Rollback(ctx)
	}
	return tx.Commit(ctx)
}

// finish commits the shared handle if this run owns it.
func (s *scope) finish(ctx context.Context) error {
	if !s.owned || s.shared.Status().Closed() {
		return nil
	}
	return s.shared.Commit(ctx)
}

// abort rolls back the shared handle if this run owns it.
func (s *scope) abort(ctx context.Context) error {
	if !s.owned || s.shared.Status().Closed() {
		return nil
	}
	return s.shared.Rollback(ctx)
}

// sharedTx is the handle actions receive in single-transaction mode.
// Commit and Rollback are no-ops: only the owner of the wrapped handle ends it.
type sharedTx struct {
	ports.Transaction
}

func (t sharedTx) Commit(context.Context) error   { return nil }
func (t sharedTx) Rollback(context.Context) error { return nil }

// Unwrap returns the underlying handle.
func (t sharedTx) Unwrap() ports.Transaction { return t.Transaction }
