package imgdex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/imgdex/blobstore"
)

var (
	// ErrNotFound is returned when a path is not cataloged or a snapshot does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by operations on a closed Catalog.
	ErrClosed = errors.New("catalog is closed")

	// ErrInvalidRecord is returned when a record has no path.
	ErrInvalidRecord = errors.New("record path must not be empty")

	// ErrNoRoot is returned by Rescan before any Scan.
	ErrNoRoot = errors.New("no scan root; call Scan first")
)

// SnapshotError reports a failed snapshot save or load.
//
// The original underlying error can be accessed via errors.Unwrap.
type SnapshotError struct {
	Op    string
	Name  string
	cause error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s %q: %v", e.Op, e.Name, e.cause)
}

func (e *SnapshotError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if blobstore.IsNotFound(err) && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
