package domain

import (
	"fmt"
	"sort"
)

// DefaultKeyField is the column used to identify rows when a dataset names none.
const DefaultKeyField = "id"

// Row is a single record of a Dataset.
type Row map[string]any

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the row's field names in lexical order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dataset is the tabular data flowing from one step to the next.
type Dataset struct {
	Entity string `json:"entity" yaml:"entity" mapstructure:"entity"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	Rows   []Row  `json:"rows" yaml:"rows" mapstructure:"rows"`
}

// NewDataset creates a dataset of the given entity.
func NewDataset(entity string, rows ...Row) *Dataset {
	if rows == nil {
		rows = []Row{}
	}
	return &Dataset{Entity: entity, Rows: rows}
}

// Len reports the number of rows. A nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// IsEmpty reports whether the dataset has no rows.
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// KeyField returns the column identifying rows.
func (d *Dataset) KeyField() string {
	if d == nil || d.Key == "" {
		return DefaultKeyField
	}
	return d.Key
}

// KeyOf returns the string form of the row's key, or "" when the row has none.
func (d *Dataset) KeyOf(row Row) string {
	v, ok := row[d.KeyField()]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	rows := make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = r.Clone()
	}
	return &Dataset{Entity: d.Entity, Key: d.Key, Rows: rows}
}

// Describe returns a short human label used on trace edges.
func (d *Dataset) Describe() string {
	if d == nil {
		return "no data"
	}
	noun := "rows"
	if len(d.Rows) == 1 {
		noun = "row"
	}
	if d.Entity == "" {
		return fmt.Sprintf("%d %s", len(d.Rows), noun)
	}
	return fmt.Sprintf("%d %s of %s", len(d.Rows), noun, d.Entity)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Row:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
