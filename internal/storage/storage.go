package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("object not found")

// Storage persists uploaded photo files. Save returns the stored name used
// for later reads and deletes.
type Storage interface {
	Save(r io.Reader, originalName string) (string, error)
	Open(name string) (io.ReadSeekCloser, error)
	Delete(name string) error
}
