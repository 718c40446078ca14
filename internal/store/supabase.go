package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseDocument maps tables onto PostgREST tables of a Supabase project.
// Every table carries the columns of its schema plus a serial id column that
// defines row order.
type SupabaseDocument struct {
	client  *supabase.Client
	schemas map[string][]string
}

func NewSupabaseDocument(url, key string, schemas map[string][]string) (*SupabaseDocument, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseDocument{client: client, schemas: schemas}, nil
}

func (d *SupabaseDocument) Table(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, ok := d.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return &supabaseTable{doc: d, name: name, header: header}, nil
}

type supabaseTable struct {
	doc    *SupabaseDocument
	name   string
	header []string
}

func (t *supabaseTable) Name() string { return t.name }

func (t *supabaseTable) Header(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneRow(t.header), nil
}

func (t *supabaseTable) Rows(ctx context.Context) ([][]string, error) {
	records, err := t.selectOrdered(ctx, "*")
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, cloneRow(t.header))
	for _, rec := range records {
		row := make([]string, len(t.header))
		for i, col := range t.header {
			row[i] = jsonString(rec[col])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *supabaseTable) AppendRow(ctx context.Context, values []string) error {
	if len(values) > len(t.header) {
		return fmt.Errorf("%w: %s has %d columns, got %d values", ErrOutOfRange, t.name, len(t.header), len(values))
	}
	record := make(map[string]string, len(values))
	for i, v := range values {
		record[t.header[i]] = v
	}
	_, err := execute(ctx, func() ([]byte, error) {
		data, _, err := t.doc.client.From(t.name).Insert(record, false, "", "minimal", "").Execute()
		return data, err
	})
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return nil
}

// UpdateCell resolves the row position to an id by reading the ids in order,
// then patches that single row. Row 1 is the header and cannot be written.
func (t *supabaseTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 2 || col < 1 || col > len(t.header) {
		return fmt.Errorf("%w: %s row %d col %d", ErrOutOfRange, t.name, row, col)
	}
	ids, err := t.selectOrdered(ctx, "id")
	if err != nil {
		return err
	}
	if row-2 >= len(ids) {
		return fmt.Errorf("%w: %s row %d col %d", ErrOutOfRange, t.name, row, col)
	}
	id := jsonString(ids[row-2]["id"])
	patch := map[string]string{t.header[col-1]: value}
	_, err = execute(ctx, func() ([]byte, error) {
		data, _, err := t.doc.client.From(t.name).Update(patch, "minimal", "").Eq("id", id).Execute()
		return data, err
	})
	if err != nil {
		return fmt.Errorf("failed to update %s id %s: %w", t.name, id, err)
	}
	return nil
}

func (t *supabaseTable) selectOrdered(ctx context.Context, columns string) ([]map[string]interface{}, error) {
	data, err := execute(ctx, func() ([]byte, error) {
		data, _, err := t.doc.client.From(t.name).
			Select(columns, "", false).
			Order("id", &postgrest.OrderOpts{Ascending: true}).
			Execute()
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.name, err)
	}
	var records []map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrUnavailable, t.name, err)
	}
	return records, nil
}

type result struct {
	data []byte
	err  error
}

// execute runs a PostgREST request, giving up when ctx ends. The client has
// no context support, so an abandoned request finishes in the background.
func execute(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan result, 1)
	go func() {
		data, err := fn()
		done <- result{data: data, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			var netErr net.Error
			if errors.As(r.err, &netErr) {
				return nil, Transient(fmt.Errorf("%w: %w", ErrUnavailable, r.err))
			}
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, r.err)
		}
		return r.data, nil
	}
}

func jsonString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
