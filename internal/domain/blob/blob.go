// Package blob describes opaque binary storage used for file payloads.
package blob

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound = errors.New("blob not found")
	ErrAborted  = errors.New("blob write aborted")
)

// Handle identifies one payload inside a Store. Handles are never reused.
type Handle string

func (h Handle) String() string { return string(h) }

// Store is the capability the storage engine needs from a blob backend.
type Store interface {
	Create(ctx context.Context) (Handle, error)
	OpenWrite(ctx context.Context, h Handle) (io.WriteCloser, error)
	OpenRead(ctx context.Context, h Handle) (io.ReadCloser, error)
	Unlink(ctx context.Context, h Handle) error
}

// Aborter is implemented by writers that can drop a partial payload without
// publishing it.
type Aborter interface {
	Abort() error
}

// Abort discards w. Writers that cannot abort are closed instead; the caller
// is expected to unlink or roll back the handle afterwards.
func Abort(w io.WriteCloser) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

// Transactional is implemented by stores that can join a metadata transaction.
// Stores that do not implement it are wrapped in a compensating journal.
type Transactional interface {
	Store
	Transactional() bool
}

// IsTransactional reports whether s commits and rolls back together with the
// metadata transaction it was bound to.
func IsTransactional(s Store) bool {
	t, ok := s.(Transactional)
	return ok && t.Transactional()
}
