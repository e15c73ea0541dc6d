package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
)

// Call is one recorded invocation of a FakeAction.
type Call struct {
	Task *domain.Task
	Tx   ports.Transaction
}

// FakeAction is a scriptable action that records how it was invoked.
type FakeAction struct {
	Name     string
	MinRows  int
	Declared []domain.Effect

	// Result is returned when Fn is nil.
	Result *domain.Result
	// Err is returned when Fn is nil.
	Err error
	Fn  func(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error)

	mu    sync.Mutex
	calls []Call
}

func (a *FakeAction) Identity() string         { return a.Name }
func (a *FakeAction) MinimumInputRows() int    { return a.MinRows }
func (a *FakeAction) Effects() []domain.Effect { return a.Declared }

func (a *FakeAction) Invoke(ctx context.Context, task *domain.Task, tx ports.Transaction) (*domain.Result, error) {
	a.mu.Lock()
	a.calls = append(a.calls, Call{Task: task, Tx: tx})
	a.mu.Unlock()

	if a.Fn != nil {
		return a.Fn(ctx, task, tx)
	}
	return a.Result, a.Err
}

// Calls returns the recorded invocations.
func (a *FakeAction) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call{}, a.calls...)
}

// Invoked reports whether the action ran at least once.
func (a *FakeAction) Invoked() bool {
	return len(a.Calls()) > 0
}

// FakeTx is a transaction handle that only tracks its status.
type FakeTx struct {
	id        string
	CommitErr error

	mu     sync.Mutex
	status domain.TxStatus
}

func (t *FakeTx) ID() string { return t.id }

func (t *FakeTx) Status() domain.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *FakeTx) Commit(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.status = domain.TxCommitted
	return nil
}

func (t *FakeTx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	t.status = domain.TxRolledBack
	return nil
}

// NewFakeTx returns an open handle.
func NewFakeTx(id string) *FakeTx {
	return &FakeTx{id: id, status: domain.TxOpen}
}

// FakeTxManager hands out FakeTx handles and remembers them.
type FakeTxManager struct {
	BeginErr  error
	CommitErr error

	mu    sync.Mutex
	begun []*FakeTx
}

func (m *FakeTxManager) Begin(context.Context) (ports.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	tx := NewFakeTx(fmt.Sprintf("tx-%d", len(m.begun)+1))
	tx.CommitErr = m.CommitErr
	m.begun = append(m.begun, tx)
	return tx, nil
}

// Begun returns every handle created so far, in order.
func (m *FakeTxManager) Begun() []*FakeTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*FakeTx{}, m.begun...)
}
