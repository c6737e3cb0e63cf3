package file

import (
	"time"
)

type (
	File struct {
		ID            int64
		UserID        int64
		Username      string
		OriginalName  string
		FileSize      int64
		MimeType      string
		BlobHandle    string
		IsPublic      bool
		DownloadCount int64

		CreatedAt time.Time
	}
	Files []*File
)
