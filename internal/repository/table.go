package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

// ErrShapeMismatch means a row does not fit the table header, or a stored
// value cannot be decoded into its field type.
var ErrShapeMismatch = errors.New("row shape mismatch")

// Record is one data row keyed by the header row.
type Record struct {
	// Row is the 1-based sheet row; the header is row 1.
	Row    int
	Values []string
	index  map[string]int
	// overflow is the number of non-blank cells past the header width.
	overflow int
}

// Get returns the value of the named column, or "" when the table has no
// such column.
func (r Record) Get(field string) string {
	i, ok := r.index[field]
	if !ok || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Predicate selects records.
type Predicate func(Record) bool

// RecordTable gives record-level access to one named table. It reads the
// whole table on every call; there is no caching.
type RecordTable struct {
	doc  store.Document
	name string
}

func NewRecordTable(doc store.Document, name string) *RecordTable {
	return &RecordTable{doc: doc, name: name}
}

// ListAll returns every data row in sheet order. Blank rows are skipped and
// short rows are padded to the header width. A row carrying data past the
// header fails the call with ErrShapeMismatch.
func (t *RecordTable) ListAll(ctx context.Context) ([]Record, error) {
	records, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := t.checkShape(r); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// scan reads the table without checking row widths. Callers check the rows
// they select.
func (t *RecordTable) scan(ctx context.Context) ([]Record, error) {
	tbl, err := t.doc.Table(ctx, t.name)
	if err != nil {
		return nil, err
	}
	rows, err := tbl.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := Record{Row: i + 2, Values: make([]string, len(header)), index: index}
		for j, v := range row {
			if j < len(header) {
				rec.Values[j] = v
			} else if strings.TrimSpace(v) != "" {
				rec.overflow++
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (t *RecordTable) checkShape(r Record) error {
	if r.overflow > 0 {
		return fmt.Errorf("%w: %s row %d has %d cells past the header",
			ErrShapeMismatch, t.name, r.Row, r.overflow)
	}
	return nil
}

// Append adds one row at the end of the table. values must match the header
// width exactly.
func (t *RecordTable) Append(ctx context.Context, values []string) error {
	tbl, err := t.doc.Table(ctx, t.name)
	if err != nil {
		return err
	}
	header, err := tbl.Header(ctx)
	if err != nil {
		return err
	}
	if len(values) != len(header) {
		return fmt.Errorf("%w: %s expects %d values, got %d", ErrShapeMismatch, t.name, len(header), len(values))
	}
	return tbl.AppendRow(ctx, values)
}

// FindBy returns the records accepted by pred, in sheet order.
func (t *RecordTable) FindBy(ctx context.Context, pred Predicate) ([]Record, error) {
	all, err := t.scan(ctx)
	if err != nil {
		return nil, err
	}
	found := make([]Record, 0)
	for _, r := range all {
		if !pred(r) {
			continue
		}
		if err := t.checkShape(r); err != nil {
			return nil, err
		}
		found = append(found, r)
	}
	return found, nil
}

// UpdateMatchingCell overwrites column of the first record accepted by pred,
// scanning from the top. It reports false when nothing matched. The scan and
// the write are separate calls; a concurrent edit in between is not detected.
func (t *RecordTable) UpdateMatchingCell(ctx context.Context, pred Predicate, column, value string) (bool, error) {
	all, err := t.scan(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range all {
		if !pred(r) {
			continue
		}
		if err := t.checkShape(r); err != nil {
			return false, err
		}
		col, ok := r.index[column]
		if !ok {
			return false, fmt.Errorf("%w: %s has no column %q", ErrShapeMismatch, t.name, column)
		}
		tbl, err := t.doc.Table(ctx, t.name)
		if err != nil {
			return false, err
		}
		if err := tbl.UpdateCell(ctx, r.Row, col+1, value); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
