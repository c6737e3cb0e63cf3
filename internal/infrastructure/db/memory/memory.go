// Package memory is an in-process metadata backend. Transactions and direct
// writes are serialised, and transactions apply copy-on-write, so a failed
// transaction leaves no trace.
package memory

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	domainblob "file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/blob"
)

type state struct {
	users    map[user.ID]user.User
	files    map[file.ID]file.File
	nextUser user.ID
	nextFile file.ID
}

func newState() *state {
	return &state{
		users: make(map[user.ID]user.User),
		files: make(map[file.ID]file.File),
	}
}

func (st *state) clone() *state {
	c := &state{
		users:    make(map[user.ID]user.User, len(st.users)),
		files:    make(map[file.ID]file.File, len(st.files)),
		nextUser: st.nextUser,
		nextFile: st.nextFile,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.files {
		c.files[k] = v
	}
	return c
}

type DB struct {
	// txMu serialises transactions and direct writes; mu guards st.
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// access runs fn against committed state under the DB lock, or directly
// against a transaction's private copy.
type access struct {
	db *DB
	tx *state
}

func (a access) read(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.db.mu.RLock()
	defer a.db.mu.RUnlock()
	return fn(a.db.st)
}

// write outside a transaction waits for any open transaction, whose commit
// replaces the whole state.
func (a access) write(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.db.txMu.Lock()
	defer a.db.txMu.Unlock()
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	return fn(a.db.st)
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
	db       *DB
	store    domainblob.Store
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func New(store domainblob.Store, logger *zap.Logger, mCounter *prometheus.CounterVec) *Manager {
	db := &DB{st: newState()}
	a := access{db: db}

	return &Manager{
		view: view{
			files: &fileRepo{a: a},
			users: &userRepo{a: a},
			blobs: store,
		},
		db:       db,
		store:    store,
		logger:   logger,
		mCounter: mCounter,
	}
}

var _ ports.TxManager = (*Manager)(nil)

func (m *Manager) InTx(ctx context.Context, fn func(ctx context.Context, s ports.Session) error) (err error) {
	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.RLock()
	tx := m.db.st.clone()
	m.db.mu.RUnlock()

	journal := blob.NewJournal(m.store, m.logger, m.mCounter)
	a := access{db: m.db, tx: tx}

	defer func() {
		if p := recover(); p != nil {
			journal.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			journal.Rollback(ctx)
			return
		}
		m.db.mu.Lock()
		m.db.st = tx
		m.db.mu.Unlock()
		journal.Commit(ctx)
	}()

	return fn(ctx, view{
		files: &fileRepo{a: a},
		users: &userRepo{a: a},
		blobs: journal,
	})
}

// InSnapshot reads from a private copy of the committed state.
func (m *Manager) InSnapshot(ctx context.Context, fn func(ctx context.Context, s ports.Session) error) error {
	m.db.mu.RLock()
	snap := m.db.st.clone()
	m.db.mu.RUnlock()

	a := access{db: m.db, tx: snap}

	return fn(ctx, view{
		files: &fileRepo{a: a},
		users: &userRepo{a: a},
		blobs: m.store,
	})
}
