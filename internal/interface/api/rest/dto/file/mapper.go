package file

import (
	"file-storage-api/internal/domain/file"
)

func ToResponseFile(f file.File) File {
	return File{
		ID:            int64(f.ID),
		UserID:        int64(f.OwnerID),
		Username:      f.OwnerUsername,
		OriginalName:  f.OriginalName,
		FileSize:      f.Size,
		MimeType:      f.MimeType,
		IsPublic:      f.IsPublic,
		DownloadCount: f.DownloadCount,
		CreatedAt:     f.CreatedAt,
	}
}

func ToResponseFiles(fs file.Files) Files {
	out := make(Files, len(fs))
	for idx, f := range fs {
		out[idx] = ToResponseFile(*f)
	}

	return out
}
