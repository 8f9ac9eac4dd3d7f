// Package docstore provides a path-keyed document store in the style of a
// schemaless document database. Every operation touches exactly one path;
// there is deliberately no multi-key transaction primitive. Callers that
// keep denormalized copies own the write ordering and must surface partial
// failures themselves.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists at the requested path.
var ErrNotFound = errors.New("docstore: document not found")

// Document pairs a path with its raw JSON payload.
type Document struct {
	Path  string
	Value []byte
}

// Store is the single-path storage contract. Implementations must be safe
// for concurrent use; last writer wins per path.
type Store interface {
	Put(ctx context.Context, path string, value []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	// ListPrefix returns all documents whose path starts with prefix,
	// ordered by path ascending.
	ListPrefix(ctx context.Context, prefix string) ([]Document, error)
}
