// Package minio stores payloads in a MinIO bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"file-storage-api/config"
	"file-storage-api/internal/domain/blob"
)

type Store struct {
	client *miniogo.Client
	bucket string
	logger *zap.Logger
}

// New connects to MinIO and creates the bucket when it is missing.
func New(ctx context.Context, logger *zap.Logger, cfg config.Minio) (*Store, error) {
	endpoint := cfg.Endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err = cli.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("minio blob store ready", zap.String("endpoint", cfg.Endpoint))

	return &Store{client: cli, bucket: cfg.Bucket, logger: logger}, nil
}

func (s *Store) Create(_ context.Context) (blob.Handle, error) {
	now := time.Now().UTC()
	return blob.Handle(fmt.Sprintf(
		"files/%04d/%02d/%02d/%s",
		now.Year(), int(now.Month()), now.Day(),
		uuid.NewString(),
	)), nil
}

// OpenWrite streams into PutObject through a pipe; the upload completes on
// Close.
func (s *Store) OpenWrite(ctx context.Context, h blob.Handle) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, h.String(), pr, -1, miniogo.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		_ = pr.CloseWithError(err)
		done <- err
	}()

	return &pipeWriter{pw: pw, done: done}, nil
}

func (s *Store) OpenRead(ctx context.Context, h blob.Handle) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, h.String(), miniogo.GetObjectOptions{})
	if err != nil {
		return nil, classify(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before streaming starts.
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, classify(err)
	}
	return obj, nil
}

func (s *Store) Unlink(ctx context.Context, h blob.Handle) error {
	return s.client.RemoveObject(ctx, s.bucket, h.String(), miniogo.RemoveObjectOptions{})
}

func classify(err error) error {
	if miniogo.ToErrorResponse(err).Code == "NoSuchKey" {
		return blob.ErrNotFound
	}
	return err
}

type pipeWriter struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *pipeWriter) Write(p []byte) (int, error) { return w.pw.Write(p) }

// Abort fails the pending PutObject so no object is stored.
func (w *pipeWriter) Abort() error {
	_ = w.pw.CloseWithError(blob.ErrAborted)
	<-w.done
	return nil
}

func (w *pipeWriter) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
