package file

import (
	"time"

	"file-storage-api/internal/domain/file"
)

type (
	File struct {
		ID            int64     `json:"id"`
		UserID        int64     `json:"user_id"`
		Username      string    `json:"username,omitempty"`
		OriginalName  string    `json:"original_name"`
		FileSize      uint64    `json:"file_size"`
		MimeType      string    `json:"mime_type"`
		IsPublic      bool      `json:"is_public"`
		DownloadCount uint64    `json:"download_count"`
		CreatedAt     time.Time `json:"created_at"`
	}
	Files []File

	ListData struct {
		Files      Files        `json:"files"`
		Pagination file.Summary `json:"pagination"`
	}
	UploadData struct {
		File File `json:"file"`
	}
)
