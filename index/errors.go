package index

import (
	"errors"
	"fmt"

	"github.com/hupe1980/searchsimilar/blobstore"
)

var (
	// ErrNotFound is returned when a blob of the database does not exist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrCorrupt is returned when a blob fails structural validation.
	ErrCorrupt = errors.New("index: corrupt data")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("index: k must be positive")

	// ErrInvalidNProbe is returned when nprobe is not positive.
	ErrInvalidNProbe = errors.New("index: nprobe must be positive")

	// ErrInvalidHit is returned for a Hit that does not address a row of this database.
	ErrInvalidHit = errors.New("index: hit does not belong to this database")

	// ErrClosed is returned when the database has been closed.
	ErrClosed = errors.New("index: database is closed")
)

// ErrDimensionMismatch indicates a query/database dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("index: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
