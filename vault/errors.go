package vault

import "errors"

// ErrPersistence indicates a write to the underlying blob store did not
// complete. Writes fail hard: the caller must never believe data was
// persisted when it was not. Reads fail soft instead (see Store.Load).
var ErrPersistence = errors.New("persistence failure")
