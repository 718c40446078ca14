// Package store opens the spreadsheet-like document that backs the app and
// exposes its sheets as row-oriented tables.
package store

import (
	"context"
	"errors"
)

// Table names and their header rows. Column order matters: rows are appended
// positionally and cells are updated by column index.
const (
	TableUsers        = "users"
	TableTransactions = "transaksi"
	TableGoals        = "celengan"
	TableDebts        = "hutang"
)

// Schemas lists the header of every table the app uses.
var Schemas = map[string][]string{
	TableUsers:        {"username", "password", "nama_lengkap"},
	TableTransactions: {"username", "tanggal", "tipe", "kategori", "nominal", "catatan"},
	TableGoals:        {"username", "nama_target", "target", "current", "deadline"},
	TableDebts:        {"username", "tanggal", "nama_orang", "jenis", "nominal", "status", "catatan", "tgl_tempo"},
}

// NumericColumns hold amounts. Backends that distinguish cell types write
// them as numbers so sums and formulas on the sheet keep working.
var NumericColumns = map[string]bool{
	"nominal": true,
	"target":  true,
	"current": true,
}

// Document is an opened store exposing named tables.
type Document interface {
	Table(ctx context.Context, name string) (Table, error)
}

// Table is one named sheet. Positions are 1-based like in a spreadsheet:
// row 1 is the header row, column 1 is the first column.
type Table interface {
	Name() string
	// Header returns the first row.
	Header(ctx context.Context) ([]string, error)
	// Rows returns every row including the header, in sheet order.
	Rows(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
}

var (
	// ErrUnavailable means the store cannot be reached: the credential is
	// missing or invalid, the network failed, or a call timed out.
	ErrUnavailable = errors.New("store unavailable")
	// ErrTableNotFound means the document has no sheet with that name.
	ErrTableNotFound = errors.New("table not found")
	// ErrOutOfRange means a cell position lies outside the table.
	ErrOutOfRange = errors.New("position out of range")
)

// transientError marks a failure that is worth one more attempt.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or anything it wraps, was marked with
// Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}
