package file

import (
	"context"

	"file-storage-api/internal/domain/user"
)

// Repository returns apperr.ErrNotFound for missing rows.
type Repository interface {
	CountByOwner(ctx context.Context, ownerID user.ID) (int, error)
	CreateFile(ctx context.Context, req File) (*File, error)
	FetchFileByID(ctx context.Context, id ID) (*File, error)
	// FetchAccessibleFile matches id AND (owner = requester OR public).
	FetchAccessibleFile(ctx context.Context, id ID, requesterID user.ID) (*File, error)
	FetchOwnerFiles(ctx context.Context, ownerID user.ID) (Files, error)
	IncrementDownloadCount(ctx context.Context, id ID) error
	DeleteFile(ctx context.Context, id ID) error

	ListFiles(ctx context.Context, q Query) (Files, error)
	CountMatching(ctx context.Context, q Query) (int, error)
}
