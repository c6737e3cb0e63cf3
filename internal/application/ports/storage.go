package ports

import (
	"context"

	"file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
)

// Session is a view over metadata and payload storage. Outside a transaction
// every call commits on its own.
type Session interface {
	Files() file.Repository
	Users() user.Repository
	Blobs() blob.Store
}

type TxManager interface {
	Session
	// InTx runs fn in one read-write transaction. Metadata and blobs written
	// through the session commit or roll back together.
	InTx(ctx context.Context, fn func(ctx context.Context, s Session) error) error
	// InSnapshot runs fn read-only against a single consistent snapshot.
	InSnapshot(ctx context.Context, fn func(ctx context.Context, s Session) error) error
}
