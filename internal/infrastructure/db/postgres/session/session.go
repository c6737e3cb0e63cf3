// Package session binds repositories and the blob store to a pool or to one
// pgx transaction.
package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	domainblob "file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/blob"
	"file-storage-api/internal/infrastructure/blob/pglo"
	"file-storage-api/internal/infrastructure/db/postgres"
	filedb "file-storage-api/internal/infrastructure/db/postgres/file"
	userdb "file-storage-api/internal/infrastructure/db/postgres/user"
)

// Pool is satisfied by *pgxpool.Pool and pgxmock.PgxPoolIface.
type Pool interface {
	postgres.DBTX
	pglo.Beginner
}

type view struct {
	files file.Repository
	users user.Repository
	blobs domainblob.Store
}

func (v view) Files() file.Repository  { return v.files }
func (v view) Users() user.Repository  { return v.users }
func (v view) Blobs() domainblob.Store { return v.blobs }

type Manager struct {
	view
	pool     Pool
	external domainblob.Store
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

// New builds a manager. A nil external store keeps payloads in large objects
// inside the metadata transaction; any other store is journaled.
func New(pool Pool, external domainblob.Store, logger *zap.Logger, mCounter *prometheus.CounterVec) *Manager {
	base := external
	if base == nil {
		base = pglo.New(pool)
	}

	return &Manager{
		view: view{
			files: filedb.NewRepository(pool),
			users: userdb.NewRepository(pool),
			blobs: base,
		},
		pool:     pool,
		external: external,
		logger:   logger,
		mCounter: mCounter,
	}
}

var _ ports.TxManager = (*Manager)(nil)

func (m *Manager) InTx(ctx context.Context, fn func(ctx context.Context, s ports.Session) error) error {
	return m.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (m *Manager) InSnapshot(ctx context.Context, fn func(ctx context.Context, s ports.Session) error) error {
	return m.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (m *Manager) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, s ports.Session) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return apperr.Internal(fmt.Errorf("begin tx: %w", err))
	}

	var (
		journal *blob.Journal
		blobs   domainblob.Store
	)
	if m.external == nil {
		blobs = pglo.Bind(tx)
	} else {
		journal = blob.NewJournal(m.external, m.logger, m.mCounter)
		blobs = journal
	}

	rollback := func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			m.logger.Warn("tx rollback failed", zap.Error(rbErr))
		}
		if journal != nil {
			journal.Rollback(ctx)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err != nil {
			rollback()
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			if journal != nil {
				journal.Rollback(ctx)
			}
			err = apperr.Internal(fmt.Errorf("commit tx: %w", cErr))
			return
		}
		if journal != nil {
			journal.Commit(ctx)
		}
	}()

	return fn(ctx, view{
		files: filedb.NewRepository(tx),
		users: userdb.NewRepository(tx),
		blobs: blobs,
	})
}
