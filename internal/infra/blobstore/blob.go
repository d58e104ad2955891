package blobstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Read when the object does not exist.
var ErrNotFound = errors.New("blob not found")

// Blob is a single addressable object in a key-value store.
type Blob interface {
	Exists(ctx context.Context) (bool, error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Location names the object for logs, e.g. "azure://container/name".
	Location() string
}

// StorageError wraps a backend failure with the operation and object it hit.
type StorageError struct {
	Op       string
	Location string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, b Blob, err error) error {
	return &StorageError{Op: op, Location: b.Location(), Err: err}
}
