package s3

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-storage-api/internal/domain/blob"
)

type FakeAPI struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeAPI() *FakeAPI { return &FakeAPI{objects: make(map[string][]byte)} }

func (f *FakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if aws.ToInt64(in.ContentLength) != int64(len(b)) {
		return nil, io.ErrShortWrite
	}
	f.mu.Lock()
	f.objects[aws.ToString(in.Key)] = b
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *FakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	b, ok := f.objects[aws.ToString(in.Key)]
	f.mu.Unlock()
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *FakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, aws.ToString(in.Key))
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := NewWithAPI(zap.NewNop(), api, "uploads")
	s.now = func() time.Time { return time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC) }

	h, err := s.Create(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^files/2024/03/07/[0-9a-f-]{36}$`, h.String())

	w, err := s.OpenWrite(ctx, h)
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte("x"), 20000))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := s.OpenRead(ctx, h)
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, b, 20000)

	require.NoError(t, s.Unlink(ctx, h))
	_, err = s.OpenRead(ctx, h)
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func (f *FakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func TestSpool_AbortSkipsUpload(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := NewWithAPI(zap.NewNop(), api, "uploads")

	h, err := s.Create(ctx)
	require.NoError(t, err)
	w, err := s.OpenWrite(ctx, h)
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	name := w.(*spool).f.Name()
	require.NoError(t, blob.Abort(w))

	assert.Zero(t, api.count())
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}

func TestSpool_FailedWriteSkipsUpload(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := NewWithAPI(zap.NewNop(), api, "uploads")

	h, err := s.Create(ctx)
	require.NoError(t, err)
	w, err := s.OpenWrite(ctx, h)
	require.NoError(t, err)
	_, err = w.Write([]byte("first"))
	require.NoError(t, err)

	sp := w.(*spool)
	require.NoError(t, sp.f.Close())
	_, err = w.Write([]byte("second"))
	require.Error(t, err)
	_, err = w.Write([]byte("third"))
	require.Error(t, err)

	assert.Error(t, w.Close())
	assert.Zero(t, api.count())
}
