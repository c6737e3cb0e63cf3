package file

import (
	"time"

	"file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/user"
)

type (
	ID   int64
	File struct {
		ID      ID
		OwnerID user.ID
		// OwnerUsername is filled by listings only.
		OwnerUsername string

		OriginalName  string
		Size          uint64
		MimeType      string
		Handle        blob.Handle
		IsPublic      bool
		DownloadCount uint64

		CreatedAt time.Time
	}
	Files []*File
)
