// Package s3 stores payloads as objects in an S3 compatible bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"file-storage-api/config"
	"file-storage-api/internal/domain/blob"
)

// API is the part of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	logger *zap.Logger
	api    API
	bucket string
	now    func() time.Time
}

// loadAWSConfig is a seam for tests.
var loadAWSConfig = awsconfig.LoadDefaultConfig

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (*Store, error) {
	if cfg.BucketUploads == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	awsCfg, err := loadAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 blob store ready", zap.String("bucket", cfg.BucketUploads))

	return NewWithAPI(logger, client, cfg.BucketUploads), nil
}

func NewWithAPI(logger *zap.Logger, api API, bucket string) *Store {
	return &Store{
		logger: logger,
		api:    api,
		bucket: bucket,
		now:    time.Now,
	}
}

// Create reserves a key of the form "files/YYYY/MM/DD/<uuid>". Nothing is
// uploaded until the first writer is closed.
func (s *Store) Create(_ context.Context) (blob.Handle, error) {
	now := s.now().UTC()
	return blob.Handle(fmt.Sprintf(
		"files/%04d/%02d/%02d/%s",
		now.Year(), int(now.Month()), now.Day(),
		uuid.NewString(),
	)), nil
}

// OpenWrite spools the payload to a temporary file and uploads it on Close,
// since PutObject needs a seekable body of known length.
func (s *Store) OpenWrite(ctx context.Context, h blob.Handle) (io.WriteCloser, error) {
	f, err := os.CreateTemp("", "filestorage-upload-*")
	if err != nil {
		return nil, err
	}
	return &spool{ctx: ctx, store: s, key: h.String(), f: f}, nil
}

func (s *Store) OpenRead(ctx context.Context, h blob.Handle) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(h.String()),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blob.ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *Store) Unlink(ctx context.Context, h blob.Handle) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(h.String()),
	})
	return err
}

type spool struct {
	ctx   context.Context
	store *Store
	key   string
	f     *os.File
	// err is the first failed write; a failed spool is never uploaded.
	err error
}

func (w *spool) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.f.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

// Abort removes the spool without uploading it.
func (w *spool) Abort() error {
	w.discard()
	return nil
}

func (w *spool) discard() {
	_ = w.f.Close()
	if err := os.Remove(w.f.Name()); err != nil {
		w.store.logger.Warn("remove upload spool", zap.Error(err))
	}
}

func (w *spool) Close() error {
	defer w.discard()

	if w.err != nil {
		return fmt.Errorf("s3 spool %s: %w", w.key, w.err)
	}

	size, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err = w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err = w.store.api.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(w.key),
		Body:          w.f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", w.key, err)
	}
	return nil
}
