package memory

import (
	"sort"
	"sync"

	"github.com/aretw0/actionchain/pkg/domain"
)

// Store holds committed rows per entity in memory.
// Safe for concurrent use; every commit is applied under a single lock.
type Store struct {
	mu      sync.RWMutex
	tables  map[string]map[string]domain.Row
	keyCols map[string]string
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		tables:  make(map[string]map[string]domain.Row),
		keyCols: make(map[string]string),
	}
}

// Seed writes a dataset directly, bypassing transactions.
func (s *Store) Seed(ds *domain.Dataset) {
	if ds == nil {
		return
	}
	ops := make([]op, 0, ds.Len())
	for _, row := range ds.Rows {
		ops = append(ops, op{entity: ds.Entity, keyCol: ds.KeyField(), key: ds.KeyOf(row), row: row.Clone()})
	}
	s.apply(ops)
}

// Load returns a copy of the committed rows of entity, ordered by key.
func (s *Store) Load(entity string) *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds := domain.NewDataset(entity)
	ds.Key = s.keyCols[entity]

	table := s.tables[entity]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ds.Rows = append(ds.Rows, table[k].Clone())
	}
	return ds
}

// Entities lists every entity that holds rows.
func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.tables))
	for name, table := range s.tables {
		if len(table) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// op is one staged change. A nil row deletes the key.
type op struct {
	entity string
	keyCol string
	key    string
	row    domain.Row
}

func (s *Store) apply(ops []op) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range ops {
		table, ok := s.tables[o.entity]
		if !ok {
			table = make(map[string]domain.Row)
			s.tables[o.entity] = table
		}
		if o.keyCol != "" {
			s.keyCols[o.entity] = o.keyCol
		}
		if o.row == nil {
			delete(table, o.key)
			continue
		}
		table[o.key] = o.row
	}
}
