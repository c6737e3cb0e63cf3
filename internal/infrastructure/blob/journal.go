// Package blob adapts payload backends to the storage engine. Backends that
// cannot join a database transaction are wrapped in a Journal.
package blob

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	domain "file-storage-api/internal/domain/blob"
)

// Journal records blob mutations made during one metadata transaction so they
// can be settled once the transaction outcome is known. Created handles are
// unlinked on rollback; unlinks are deferred until commit.
type Journal struct {
	store    domain.Store
	logger   *zap.Logger
	mCounter *prometheus.CounterVec

	mu      sync.Mutex
	created []domain.Handle
	unlinks []domain.Handle
}

func NewJournal(store domain.Store, logger *zap.Logger, mCounter *prometheus.CounterVec) *Journal {
	return &Journal{
		store:    store,
		logger:   logger,
		mCounter: mCounter,
	}
}

func (j *Journal) Create(ctx context.Context) (domain.Handle, error) {
	h, err := j.store.Create(ctx)
	if err != nil {
		return "", err
	}

	j.mu.Lock()
	j.created = append(j.created, h)
	j.mu.Unlock()

	return h, nil
}

func (j *Journal) OpenWrite(ctx context.Context, h domain.Handle) (io.WriteCloser, error) {
	return j.store.OpenWrite(ctx, h)
}

func (j *Journal) OpenRead(ctx context.Context, h domain.Handle) (io.ReadCloser, error) {
	return j.store.OpenRead(ctx, h)
}

// Unlink only records h. The payload is removed by Commit.
func (j *Journal) Unlink(_ context.Context, h domain.Handle) error {
	j.mu.Lock()
	j.unlinks = append(j.unlinks, h)
	j.mu.Unlock()

	return nil
}

// Commit applies deferred unlinks after the metadata commit succeeded.
func (j *Journal) Commit(ctx context.Context) {
	j.mu.Lock()
	hs := j.unlinks
	j.unlinks, j.created = nil, nil
	j.mu.Unlock()

	j.settle(ctx, hs, "deferred unlink failed")
}

// Rollback removes payloads created inside the aborted transaction.
func (j *Journal) Rollback(ctx context.Context) {
	j.mu.Lock()
	hs := j.created
	j.unlinks, j.created = nil, nil
	j.mu.Unlock()

	j.settle(ctx, hs, "compensating unlink failed")
}

func (j *Journal) settle(ctx context.Context, hs []domain.Handle, msg string) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range hs {
		err := j.store.Unlink(ctx, h)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			continue
		}

		if j.mCounter != nil {
			j.mCounter.WithLabelValues("blob_orphans_total").Inc()
		}
		j.logger.Error(msg+", blob orphaned", zap.String("handle", h.String()), zap.Error(err))
	}
}
