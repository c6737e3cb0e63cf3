// Package pglo stores payloads as PostgreSQL large objects. A store bound to a
// transaction commits and rolls back with the metadata written in it.
package pglo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"file-storage-api/internal/domain/blob"
)

const undefinedObject = "42704"

type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxStore operates on large objects inside an open transaction.
type TxStore struct {
	tx pgx.Tx
}

func Bind(tx pgx.Tx) *TxStore { return &TxStore{tx: tx} }

func (s *TxStore) Transactional() bool { return true }

func (s *TxStore) Create(ctx context.Context) (blob.Handle, error) {
	los := s.tx.LargeObjects()
	oid, err := los.Create(ctx, 0)
	if err != nil {
		return "", fmt.Errorf("lo create: %w", err)
	}
	return handle(oid), nil
}

func (s *TxStore) OpenWrite(ctx context.Context, h blob.Handle) (io.WriteCloser, error) {
	return s.open(ctx, h, pgx.LargeObjectModeWrite)
}

func (s *TxStore) OpenRead(ctx context.Context, h blob.Handle) (io.ReadCloser, error) {
	return s.open(ctx, h, pgx.LargeObjectModeRead)
}

func (s *TxStore) open(ctx context.Context, h blob.Handle, mode pgx.LargeObjectMode) (*pgx.LargeObject, error) {
	oid, err := parse(h)
	if err != nil {
		return nil, err
	}
	los := s.tx.LargeObjects()
	lo, err := los.Open(ctx, oid, mode)
	if err != nil {
		return nil, classify(err)
	}
	return lo, nil
}

func (s *TxStore) Unlink(ctx context.Context, h blob.Handle) error {
	oid, err := parse(h)
	if err != nil {
		return err
	}
	los := s.tx.LargeObjects()
	if err = los.Unlink(ctx, oid); err != nil {
		return classify(err)
	}
	return nil
}

// Store runs every call in its own short transaction. Readers keep their
// transaction open until closed.
type Store struct {
	db Beginner
}

func New(db Beginner) *Store { return &Store{db: db} }

func (s *Store) Create(ctx context.Context) (blob.Handle, error) {
	var h blob.Handle
	err := s.inTx(ctx, func(ts *TxStore) (err error) {
		h, err = ts.Create(ctx)
		return err
	})
	return h, err
}

func (s *Store) OpenWrite(ctx context.Context, h blob.Handle) (io.WriteCloser, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	lo, err := Bind(tx).open(ctx, h, pgx.LargeObjectModeWrite)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return &txObject{LargeObject: lo, tx: tx, ctx: ctx, commit: true}, nil
}

func (s *Store) OpenRead(ctx context.Context, h blob.Handle) (io.ReadCloser, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	lo, err := Bind(tx).open(ctx, h, pgx.LargeObjectModeRead)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return &txObject{LargeObject: lo, tx: tx, ctx: ctx}, nil
}

func (s *Store) Unlink(ctx context.Context, h blob.Handle) error {
	return s.inTx(ctx, func(ts *TxStore) error {
		return ts.Unlink(ctx, h)
	})
}

func (s *Store) inTx(ctx context.Context, fn func(ts *TxStore) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	return fn(Bind(tx))
}

type txObject struct {
	*pgx.LargeObject
	tx     pgx.Tx
	ctx    context.Context
	commit bool
}

func (o *txObject) Close() error {
	err := o.LargeObject.Close()
	if err != nil || !o.commit {
		_ = o.tx.Rollback(o.ctx)
		return err
	}
	return o.tx.Commit(o.ctx)
}

func handle(oid uint32) blob.Handle {
	return blob.Handle(strconv.FormatUint(uint64(oid), 10))
}

func parse(h blob.Handle) (uint32, error) {
	oid, err := strconv.ParseUint(h.String(), 10, 32)
	if err != nil || oid == 0 {
		return 0, blob.ErrNotFound
	}
	return uint32(oid), nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedObject {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, pgErr.Message)
	}
	return err
}
