package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryDocument keeps tables in process memory. It backs the tests and the
// memory backend used for local runs without credentials.
type MemoryDocument struct {
	mu     sync.Mutex
	tables map[string]*memoryTable
}

// NewMemoryDocument creates one table per schema entry, each holding only its
// header row.
func NewMemoryDocument(schemas map[string][]string) *MemoryDocument {
	doc := &MemoryDocument{tables: make(map[string]*memoryTable, len(schemas))}
	for name, header := range schemas {
		doc.tables[name] = &memoryTable{doc: doc, name: name, rows: [][]string{cloneRow(header)}}
	}
	return doc
}

func (d *MemoryDocument) Table(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// SetRows replaces the full content of a table, header included. Tests use it
// to seed rows that the app itself would never write.
func (d *MemoryDocument) SetRows(name string, rows [][]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = cloneRow(r)
	}
	t, ok := d.tables[name]
	if !ok {
		t = &memoryTable{doc: d, name: name}
		d.tables[name] = t
	}
	t.rows = copied
}

type memoryTable struct {
	doc  *MemoryDocument
	name string
	rows [][]string
}

func (t *memoryTable) Name() string { return t.name }

func (t *memoryTable) Header(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	if len(t.rows) == 0 {
		return nil, nil
	}
	return cloneRow(t.rows[0]), nil
}

func (t *memoryTable) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

func (t *memoryTable) AppendRow(ctx context.Context, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	t.rows = append(t.rows, cloneRow(values))
	return nil
}

func (t *memoryTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.doc.mu.Lock()
	defer t.doc.mu.Unlock()
	if row < 1 || row > len(t.rows) || col < 1 {
		return fmt.Errorf("%w: %s row %d col %d", ErrOutOfRange, t.name, row, col)
	}
	r := t.rows[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	t.rows[row-1] = r
	return nil
}

func cloneRow(r []string) []string {
	return append([]string(nil), r...)
}
