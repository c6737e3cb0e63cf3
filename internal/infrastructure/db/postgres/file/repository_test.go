package file

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/blob"
	domain "file-storage-api/internal/domain/file"
)

var fileColumns = []string{
	"id", "user_id", "username", "original_name", "file_size", "mime_type",
	"blob_handle", "is_public", "download_count", "created_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRepository_CreateFile(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(InsertFile)).
		WithArgs(int64(1), "a.txt", int64(5), "text/plain", "16400", false).
		WillReturnRows(mock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

	f, err := repo.CreateFile(context.Background(), domain.File{
		OwnerID:      1,
		OriginalName: "a.txt",
		Size:         5,
		MimeType:     "text/plain",
		Handle:       blob.Handle("16400"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID(11), f.ID)
	assert.Equal(t, now, f.CreatedAt)
	assert.Zero(t, f.DownloadCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchAccessibleFile(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(SelectAccessibleFile)).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(mock.NewRows(fileColumns).
			AddRow(int64(3), int64(2), "bob", "pub.pdf", int64(10), "application/pdf", "h1", true, int64(4), now))

	f, err := repo.FetchAccessibleFile(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.True(t, f.IsPublic)
	assert.Equal(t, "bob", f.OwnerUsername)
	assert.Equal(t, uint64(4), f.DownloadCount)
	assert.Equal(t, blob.Handle("h1"), f.Handle)

	mock.ExpectQuery(regexp.QuoteMeta(SelectAccessibleFile)).
		WithArgs(int64(4), int64(1)).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FetchAccessibleFile(context.Background(), 4, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IncrementDownloadCount(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(IncrementDownloadCount)).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(IncrementDownloadCount)).
		WithArgs(int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.IncrementDownloadCount(context.Background(), 5))
	assert.ErrorIs(t, repo.IncrementDownloadCount(context.Background(), 6), apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListAndCount(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)
	now := time.Now().UTC()

	q := domain.Query{
		Scope: domain.Owned(1),
		Sort:  domain.DefaultSort,
		Page:  domain.Page{Number: 2, Size: 5},
	}
	listSQL, _, err := listQuery(q)
	require.NoError(t, err)
	countSQL, _, err := countQuery(q)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WithArgs(int64(1), 5, 5).
		WillReturnRows(mock.NewRows(fileColumns).
			AddRow(int64(6), int64(1), "alice", "f6", int64(1), "text/plain", "h6", false, int64(0), now).
			AddRow(int64(7), int64(1), "alice", "f7", int64(1), "text/plain", "h7", false, int64(0), now))
	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(12))

	fs, err := repo.ListFiles(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	n, err := repo.CountMatching(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
