package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// WithTimeout bounds every store call by timeout. Header, Rows and
// UpdateCell are retried once when the first attempt fails transiently.
// AppendRow is never retried: a retried append whose first attempt did reach
// the store would add the row twice.
func WithTimeout(doc Document, timeout time.Duration) Document {
	return &timeoutDocument{doc: doc, timeout: timeout}
}

type timeoutDocument struct {
	doc     Document
	timeout time.Duration
}

func (d *timeoutDocument) Table(ctx context.Context, name string) (Table, error) {
	var t Table
	err := d.call(ctx, true, func(ctx context.Context) error {
		var err error
		t, err = d.doc.Table(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &timeoutTable{Table: t, doc: d}, nil
}

// call runs fn under the per-call timeout, at most twice when retry is set.
func (d *timeoutDocument) call(ctx context.Context, retry bool, fn func(ctx context.Context) error) error {
	err := d.attempt(ctx, fn)
	if err == nil || !retry || !IsTransient(err) || ctx.Err() != nil {
		return err
	}
	log.Printf("INFO: Retrying store call after transient failure: %v", err)
	return d.attempt(ctx, fn)
}

func (d *timeoutDocument) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := fn(callCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// Our own deadline fired, not the caller's.
		return Transient(fmt.Errorf("%w: call timed out after %s", ErrUnavailable, d.timeout))
	}
	return err
}

type timeoutTable struct {
	Table
	doc *timeoutDocument
}

func (t *timeoutTable) Header(ctx context.Context) ([]string, error) {
	var header []string
	err := t.doc.call(ctx, true, func(ctx context.Context) error {
		var err error
		header, err = t.Table.Header(ctx)
		return err
	})
	return header, err
}

func (t *timeoutTable) Rows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := t.doc.call(ctx, true, func(ctx context.Context) error {
		var err error
		rows, err = t.Table.Rows(ctx)
		return err
	})
	return rows, err
}

func (t *timeoutTable) AppendRow(ctx context.Context, values []string) error {
	return t.doc.call(ctx, false, func(ctx context.Context) error {
		return t.Table.AppendRow(ctx, values)
	})
}

func (t *timeoutTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	return t.doc.call(ctx, true, func(ctx context.Context) error {
		return t.Table.UpdateCell(ctx, row, col, value)
	})
}
