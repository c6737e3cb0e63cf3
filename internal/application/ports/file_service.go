package ports

import (
	"context"
	"io"

	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
)

type (
	UploadRequest struct {
		OwnerID      user.ID
		Payload      io.Reader
		DeclaredName string
		DeclaredSize int64
		DeclaredMime string
	}

	// Download is an open payload stream; the caller must Close Body.
	Download struct {
		Body     io.ReadCloser
		Name     string
		MimeType string
		Size     uint64
	}

	Listing struct {
		Items   file.Files
		Summary file.Summary
	}
)

type StorageEngine interface {
	Upload(ctx context.Context, req UploadRequest) (*file.File, error)
	Download(ctx context.Context, id file.ID, requesterID user.ID) (*Download, error)
	// Stream copies an opened download to dst in bounded chunks and closes it.
	Stream(ctx context.Context, dst io.Writer, d *Download) (int64, error)
	Delete(ctx context.Context, id file.ID, requester Identity) error
	CountFiles(ctx context.Context, ownerID user.ID) (int, error)
	// PurgeOwner removes every file of ownerID inside the caller's transaction.
	PurgeOwner(ctx context.Context, s Session, ownerID user.ID) (int, error)
}

type QueryEngine interface {
	List(ctx context.Context, q file.Query) (*Listing, error)
}

type QuotaEnforcer interface {
	CheckCount(current int) error
	CheckSize(size int64) error
	MaxPayloadBytes() int64
}
