// Package memory keeps payloads in process memory.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"file-storage-api/internal/domain/blob"
)

type Store struct {
	mu    sync.RWMutex
	blobs map[blob.Handle][]byte
}

func New() *Store {
	return &Store{blobs: make(map[blob.Handle][]byte)}
}

func (s *Store) Create(_ context.Context) (blob.Handle, error) {
	h := blob.Handle(uuid.NewString())

	s.mu.Lock()
	s.blobs[h] = nil
	s.mu.Unlock()

	return h, nil
}

func (s *Store) OpenWrite(_ context.Context, h blob.Handle) (io.WriteCloser, error) {
	s.mu.RLock()
	_, ok := s.blobs[h]
	s.mu.RUnlock()
	if !ok {
		return nil, blob.ErrNotFound
	}

	return &writer{store: s, h: h}, nil
}

func (s *Store) OpenRead(_ context.Context, h blob.Handle) (io.ReadCloser, error) {
	s.mu.RLock()
	b, ok := s.blobs[h]
	s.mu.RUnlock()
	if !ok {
		return nil, blob.ErrNotFound
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *Store) Unlink(_ context.Context, h blob.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[h]; !ok {
		return blob.ErrNotFound
	}
	delete(s.blobs, h)

	return nil
}

// Len reports the number of stored payloads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

type writer struct {
	store *Store
	h     blob.Handle
	buf   bytes.Buffer
}

func (w *writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

// Abort drops the buffered bytes; the handle keeps its previous payload.
func (w *writer) Abort() error {
	w.buf.Reset()
	return nil
}

// Close publishes the written bytes. Readers never observe a partial payload.
func (w *writer) Close() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	if _, ok := w.store.blobs[w.h]; !ok {
		return blob.ErrNotFound
	}
	w.store.blobs[w.h] = w.buf.Bytes()

	return nil
}
