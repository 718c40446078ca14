package store

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Unavailable returns a document whose every call fails with ErrUnavailable.
// It stands in for the real store when no credential is configured.
func Unavailable(reason string) Document {
	return unavailableDocument{reason: reason}
}

type unavailableDocument struct {
	reason string
}

func (d unavailableDocument) Table(ctx context.Context, name string) (Table, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, d.reason)
}

// ConnectFunc performs the expensive handshake with a remote document.
type ConnectFunc func(ctx context.Context) (Document, error)

// Lazy defers the handshake to the first Table call. A successful connection
// is kept for the lifetime of the returned handle; a failed one is reported
// as ErrUnavailable and attempted again on the next call. Safe for concurrent
// use.
func Lazy(connect ConnectFunc) Document {
	return &lazyDocument{connect: connect}
}

type lazyDocument struct {
	connect ConnectFunc

	mu  sync.Mutex
	doc Document
}

func (d *lazyDocument) Table(ctx context.Context, name string) (Table, error) {
	doc, err := d.get(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Table(ctx, name)
}

func (d *lazyDocument) get(ctx context.Context) (Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc != nil {
		return d.doc, nil
	}
	doc, err := d.connect(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to open store: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	log.Printf("INFO: Store connected")
	d.doc = doc
	return doc, nil
}
