package file

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) file.Repository {
	return &Repository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.Username,
		&f.OriginalName,
		&f.FileSize,
		&f.MimeType,
		&f.BlobHandle,
		&f.IsPublic,
		&f.DownloadCount,
		&f.CreatedAt,
	)
	return f, err
}

func (r *Repository) fetchOne(ctx context.Context, sql string, args ...any) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) fetchMany(ctx context.Context, sql string, args ...any) (file.Files, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs Files
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}

func (r *Repository) CountByOwner(ctx context.Context, ownerID user.ID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, CountOwnerFiles, int64(ownerID)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) CreateFile(ctx context.Context, req file.File) (*file.File, error) {
	var (
		id  int64
		out = req
	)

	err := r.db.QueryRow(
		ctx,
		InsertFile,
		int64(req.OwnerID), req.OriginalName, int64(req.Size), req.MimeType, req.Handle.String(), req.IsPublic,
	).Scan(&id, &out.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyViolation(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	out.ID = file.ID(id)
	out.DownloadCount = 0

	return &out, nil
}

func (r *Repository) FetchFileByID(ctx context.Context, id file.ID) (*file.File, error) {
	return r.fetchOne(ctx, SelectFileByID, int64(id))
}

func (r *Repository) FetchAccessibleFile(ctx context.Context, id file.ID, requesterID user.ID) (*file.File, error) {
	return r.fetchOne(ctx, SelectAccessibleFile, int64(id), int64(requesterID))
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, ownerID user.ID) (file.Files, error) {
	return r.fetchMany(ctx, SelectOwnerFiles, int64(ownerID))
}

func (r *Repository) IncrementDownloadCount(ctx context.Context, id file.ID) error {
	tag, err := r.db.Exec(ctx, IncrementDownloadCount, int64(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id file.ID) error {
	tag, err := r.db.Exec(ctx, DeleteFileByID, int64(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, q file.Query) (file.Files, error) {
	sql, args, err := listQuery(q)
	if err != nil {
		return nil, err
	}
	return r.fetchMany(ctx, sql, args...)
}

func (r *Repository) CountMatching(ctx context.Context, q file.Query) (int, error) {
	sql, args, err := countQuery(q)
	if err != nil {
		return 0, err
	}

	var n int
	if err = r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
