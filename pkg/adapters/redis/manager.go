package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the manager touches.
const DefaultPrefix = "actionchain:"

// Manager implements ports.TransactionManager on Redis.
//
// Rows of an entity live in one hash keyed by row key, each value being the
// JSON encoded row. A handle queues its changes on a MULTI/EXEC pipeline, so
// nothing reaches Redis before Commit.
type Manager struct {
	client  *backend.Client
	prefix  string
	locker  *Locker
	lockTTL time.Duration
}

type Option func(*Manager)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithCommitLock serializes commits of every manager sharing the prefix
// through a distributed lock held for at most ttl.
func WithCommitLock(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// New creates a new Redis transaction manager with options.
func New(address, password string, db int, opts ...Option) *Manager {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis transaction manager from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Manager {
	m := &Manager{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.lockTTL > 0 {
		m.locker = NewLocker(client, m.prefix)
	}
	return m
}

func (m *Manager) rowsKey(entity string) string {
	return m.prefix + "rows:" + entity
}

func (m *Manager) metaKey() string {
	return m.prefix + "keys"
}

// Begin opens a new transaction.
func (m *Manager) Begin(ctx context.Context) (ports.Transaction, error) {
	return &Tx{
		id:     uuid.NewString(),
		mgr:    m,
		pipe:   m.client.TxPipeline(),
		status: domain.TxOpen,
	}, nil
}

// Load returns the committed rows of entity, ordered by key.
func (m *Manager) Load(ctx context.Context, entity string) (*domain.Dataset, error) {
	raw, err := m.client.HGetAll(ctx, m.rowsKey(entity)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", entity, err)
	}

	ds := domain.NewDataset(entity)
	keyCol, err := m.client.HGet(ctx, m.metaKey(), entity).Result()
	if err != nil && !errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("failed to read key column of %s: %w", entity, err)
	}
	ds.Key = keyCol

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var row domain.Row
		if err := json.Unmarshal([]byte(raw[k]), &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row %s of %s: %w", k, entity, err)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// Close closes the redis client.
func (m *Manager) Close() error {
	return m.client.Close()
}

// Tx queues row changes on a transactional pipeline.
type Tx struct {
	id  string
	mgr *Manager

	mu     sync.Mutex
	pipe   backend.Pipeliner
	status domain.TxStatus
}

func (t *Tx) ID() string { return t.id }

func (t *Tx) Status() domain.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Write queues an upsert of rows, identified by their keyCol value.
func (t *Tx) Write(ctx context.Context, entity, keyCol string, rows []domain.Row) error {
	values := make([]any, 0, 2*len(rows))
	for i, row := range rows {
		v, ok := row[keyCol]
		if !ok || v == nil {
			return fmt.Errorf("row %d of %s has no %q key", i, entity, keyCol)
		}
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d of %s: %w", i, entity, err)
		}
		values = append(values, fmt.Sprint(v), data)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	if len(values) == 0 {
		return nil
	}
	t.pipe.HSet(ctx, t.mgr.rowsKey(entity), values...)
	t.pipe.HSet(ctx, t.mgr.metaKey(), entity, keyCol)
	return nil
}

// Remove queues the deletion of keys.
func (t *Tx) Remove(ctx context.Context, entity string, keys []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	if len(keys) == 0 {
		return nil
	}
	t.pipe.HDel(ctx, t.mgr.rowsKey(entity), keys...)
	return nil
}

// Pending is the number of queued commands.
func (t *Tx) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pipe.Len()
}

func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}

	if t.pipe.Len() > 0 {
		if t.mgr.locker != nil {
			unlock, err := t.mgr.locker.Lock(ctx, "commit", t.mgr.lockTTL)
			if err != nil {
				return err
			}
			defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
		}
		if _, err := t.pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to commit to redis: %w", err)
		}
	}

	t.status = domain.TxCommitted
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Closed() {
		return domain.ErrTransactionClosed
	}
	t.pipe.Discard()
	t.status = domain.TxRolledBack
	return nil
}
