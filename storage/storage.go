// Package storage provides the byte-addressable blob store abstraction
// backing the encrypted collections.
package storage

import "errors"

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("key not found")

// BlobStore is a flat key-to-bytes map. Implementations must be safe for
// concurrent use. Get returns ErrNotFound for absent keys; callers decide
// whether absence is an error or a valid empty state.
type BlobStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
