package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	blobmem "file-storage-api/internal/infrastructure/blob/memory"
	memdb "file-storage-api/internal/infrastructure/db/memory"
	"file-storage-api/internal/infrastructure/mq"
	"file-storage-api/internal/infrastructure/token"
)

type FakePublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *FakePublisher) Publish(e mq.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *FakePublisher) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	tx        *memdb.Manager
	blobs     *blobmem.Store
	tokens    *token.Service
	gate      ports.AccessGate
	engine    *StorageEngine
	query     ports.QueryEngine
	publisher *FakePublisher
}

func newFixture(t *testing.T, maxFiles int, maxPayload int64) *fixture {
	t.Helper()

	blobs := blobmem.New()
	tx := memdb.New(blobs, zap.NewNop(), nil)
	tokens, err := token.New("test-secret", time.Hour)
	require.NoError(t, err)
	gate := NewAccessGate(tokens)
	pub := &FakePublisher{}

	return &fixture{
		tx:     tx,
		blobs:  blobs,
		tokens: tokens,
		gate:   gate,
		engine: NewStorageEngine(tx, NewQuota(maxFiles, maxPayload), gate, pub,
			StorageConfig{ChunkSize: 8 << 10, ChunkTimeout: time.Second}, zap.NewNop(), nil, nil),
		query:     NewQueryEngine(tx),
		publisher: pub,
	}
}

func (f *fixture) user(t *testing.T, name string, role user.Role) ports.Identity {
	t.Helper()
	u, err := f.tx.Users().CreateUser(context.Background(), user.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	return ports.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (f *fixture) upload(t *testing.T, owner ports.Identity, name string, payload []byte) *file.File {
	t.Helper()
	out, err := f.engine.Upload(context.Background(), uploadReq(owner, name, payload))
	require.NoError(t, err)
	return out
}

func uploadReq(owner ports.Identity, name string, payload []byte) ports.UploadRequest {
	return ports.UploadRequest{
		OwnerID:      owner.UserID,
		Payload:      bytes.NewReader(payload),
		DeclaredName: name,
		DeclaredSize: int64(len(payload)),
		DeclaredMime: "text/plain",
	}
}
