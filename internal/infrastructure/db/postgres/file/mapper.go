package file

import (
	"file-storage-api/internal/domain/blob"
	domain "file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
)

func fromDBModel(model *File) *domain.File {
	var f = &domain.File{
		ID:            domain.ID(model.ID),
		OwnerID:       user.ID(model.UserID),
		OwnerUsername: model.Username,

		OriginalName:  model.OriginalName,
		Size:          uint64(model.FileSize),
		MimeType:      model.MimeType,
		Handle:        blob.Handle(model.BlobHandle),
		IsPublic:      model.IsPublic,
		DownloadCount: uint64(model.DownloadCount),

		CreatedAt: model.CreatedAt,
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}
