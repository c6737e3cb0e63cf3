package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/infrastructure/blob/memory"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestManager_InTx_CommitKeepsBlob(t *testing.T) {
	mock := newMock(t)
	store := memory.New()
	m := New(mock, store, zap.NewNop(), nil)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectCommit()

	err := m.InTx(context.Background(), func(ctx context.Context, s ports.Session) error {
		_, err := s.Blobs().Create(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_InTx_RollbackUnlinksBlob(t *testing.T) {
	mock := newMock(t)
	store := memory.New()
	m := New(mock, store, zap.NewNop(), nil)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := m.InTx(context.Background(), func(ctx context.Context, s ports.Session) error {
		if _, err := s.Blobs().Create(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_InTx_CommitFailureIsInternal(t *testing.T) {
	mock := newMock(t)
	store := memory.New()
	m := New(mock, store, zap.NewNop(), nil)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	err := m.InTx(context.Background(), func(ctx context.Context, s ports.Session) error {
		_, err := s.Blobs().Create(ctx)
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Equal(t, 0, store.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_InSnapshot_ReadOnlyRepeatableRead(t *testing.T) {
	mock := newMock(t)
	m := New(mock, memory.New(), zap.NewNop(), nil)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectCommit()

	require.NoError(t, m.InSnapshot(context.Background(), func(context.Context, ports.Session) error { return nil }))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_BeginFailureIsInternal(t *testing.T) {
	mock := newMock(t)
	m := New(mock, memory.New(), zap.NewNop(), nil)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}).WillReturnError(errors.New("pool closed"))

	err := m.InTx(context.Background(), func(context.Context, ports.Session) error { return nil })
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
