package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/file"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/mq"
)

const (
	defaultMimeType = "application/octet-stream"
	maxNameLen      = 255
)

type StorageConfig struct {
	ChunkSize    int
	ChunkTimeout time.Duration
}

type StorageEngine struct {
	tx        ports.TxManager
	quota     ports.QuotaEnforcer
	gate      ports.AccessGate
	publisher ports.EventPublisher
	copier    chunkCopier
	logger    *zap.Logger
	mCounter  *prometheus.CounterVec
	mBytes    *prometheus.HistogramVec
}

func NewStorageEngine(
	tx ports.TxManager,
	quota ports.QuotaEnforcer,
	gate ports.AccessGate,
	publisher ports.EventPublisher,
	cfg StorageConfig,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	mBytes *prometheus.HistogramVec,
) *StorageEngine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8 << 10
	}
	if cfg.ChunkTimeout <= 0 {
		cfg.ChunkTimeout = 30 * time.Second
	}

	return &StorageEngine{
		tx:        tx,
		quota:     quota,
		gate:      gate,
		publisher: publisher,
		copier:    chunkCopier{size: cfg.ChunkSize, timeout: cfg.ChunkTimeout},
		logger:    logger,
		mCounter:  mCounter,
		mBytes:    mBytes,
	}
}

var _ ports.StorageEngine = (*StorageEngine)(nil)

func (e *StorageEngine) Upload(ctx context.Context, req ports.UploadRequest) (*file.File, error) {
	name := strings.TrimSpace(req.DeclaredName)
	switch {
	case name == "":
		return nil, apperr.NewValidation("file", "file name is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		return nil, apperr.NewValidation("file", fmt.Sprintf("file name exceeds %d characters", maxNameLen))
	case req.Payload == nil:
		return nil, apperr.NewValidation("file", "payload is required")
	}

	if err := e.quota.CheckSize(req.DeclaredSize); err != nil {
		e.inc("upload_rejected_total")
		return nil, err
	}

	mime := strings.TrimSpace(req.DeclaredMime)
	if mime == "" {
		mime = defaultMimeType
	}

	var out *file.File
	err := e.tx.InTx(ctx, func(ctx context.Context, s ports.Session) error {
		// Serialises uploads of one owner until commit.
		if err := s.Users().LockUser(ctx, req.OwnerID); err != nil {
			return err
		}
		n, err := s.Files().CountByOwner(ctx, req.OwnerID)
		if err != nil {
			return err
		}
		if err = e.quota.CheckCount(n); err != nil {
			return err
		}

		h, err := s.Blobs().Create(ctx)
		if err != nil {
			return fmt.Errorf("create blob: %w", err)
		}
		if err = e.write(ctx, s.Blobs(), h, req); err != nil {
			return err
		}

		out, err = s.Files().CreateFile(ctx, file.File{
			OwnerID:      req.OwnerID,
			OriginalName: name,
			Size:         uint64(req.DeclaredSize),
			MimeType:     mime,
			Handle:       h,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrQuotaExceeded) {
			e.inc("upload_rejected_total")
		}
		return nil, apperr.Internal(err)
	}

	e.inc("upload_total")
	if e.mBytes != nil {
		e.mBytes.WithLabelValues("upload").Observe(float64(out.Size))
	}
	e.publish(mq.NewEvent(mq.ActionFileUploaded, int64(out.OwnerID), int64(out.ID), eventFile(out)))

	return out, nil
}

// write streams the payload and checks it against the declared size. At most
// one byte beyond the declared size is read.
func (e *StorageEngine) write(ctx context.Context, store blob.Store, h blob.Handle, req ports.UploadRequest) error {
	w, err := store.OpenWrite(ctx, h)
	if err != nil {
		return fmt.Errorf("open blob for write: %w", err)
	}

	n, err := e.copier.Copy(ctx, w, io.LimitReader(req.Payload, req.DeclaredSize+1))
	if err != nil {
		_ = blob.Abort(w)
		return apperr.Internal(fmt.Errorf("write payload: %w", err))
	}
	if n != req.DeclaredSize {
		_ = blob.Abort(w)
		return apperr.NewValidation("file", fmt.Sprintf("declared size %d does not match payload", req.DeclaredSize))
	}
	if err = w.Close(); err != nil {
		return apperr.Internal(fmt.Errorf("close blob: %w", err))
	}
	return nil
}

// Download matches id AND (owner OR public). A private file of someone else
// is reported exactly like a missing one. The counter is committed before the
// payload is opened and stays incremented if streaming later fails.
func (e *StorageEngine) Download(ctx context.Context, id file.ID, requesterID user.ID) (*ports.Download, error) {
	f, err := e.tx.Files().FetchAccessibleFile(ctx, id, requesterID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err = e.tx.Files().IncrementDownloadCount(ctx, f.ID); err != nil {
		return nil, apperr.Internal(err)
	}

	body, err := e.tx.Blobs().OpenRead(ctx, f.Handle)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// Deleted between the match and the open.
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal(fmt.Errorf("open blob: %w", err))
	}

	e.inc("download_total")

	return &ports.Download{
		Body:     body,
		Name:     f.OriginalName,
		MimeType: f.MimeType,
		Size:     f.Size,
	}, nil
}

func (e *StorageEngine) Stream(ctx context.Context, dst io.Writer, d *ports.Download) (int64, error) {
	defer func() {
		if err := d.Body.Close(); err != nil {
			e.logger.Warn("close download stream", zap.Error(err))
		}
	}()

	n, err := e.copier.Copy(ctx, dst, d.Body)
	if e.mBytes != nil {
		e.mBytes.WithLabelValues("download").Observe(float64(n))
	}
	if err != nil {
		e.inc("download_aborted_total")
		return n, apperr.Internal(err)
	}
	if uint64(n) != d.Size {
		e.inc("download_aborted_total")
		return n, apperr.Internalf("payload length %d differs from recorded size %d", n, d.Size)
	}
	return n, nil
}

// Delete reveals existence: a file owned by someone else is ErrForbidden, a
// missing one ErrNotFound.
func (e *StorageEngine) Delete(ctx context.Context, id file.ID, requester ports.Identity) error {
	var deleted *file.File
	err := e.tx.InTx(ctx, func(ctx context.Context, s ports.Session) error {
		f, err := s.Files().FetchFileByID(ctx, id)
		if err != nil {
			return err
		}
		if err = e.gate.RequireOwnerOrAdmin(requester, f.OwnerID); err != nil {
			return err
		}
		if err = e.remove(ctx, s, f); err != nil {
			return err
		}
		deleted = f
		return nil
	})
	if err != nil {
		return apperr.Internal(err)
	}

	e.inc("delete_total")
	e.publish(mq.NewEvent(mq.ActionFileDeleted, int64(deleted.OwnerID), int64(deleted.ID), eventFile(deleted)))

	return nil
}

func (e *StorageEngine) PurgeOwner(ctx context.Context, s ports.Session, ownerID user.ID) (int, error) {
	fs, err := s.Files().FetchOwnerFiles(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	for _, f := range fs {
		if err = e.remove(ctx, s, f); err != nil {
			return 0, err
		}
	}
	return len(fs), nil
}

func (e *StorageEngine) remove(ctx context.Context, s ports.Session, f *file.File) error {
	if err := s.Blobs().Unlink(ctx, f.Handle); err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("unlink blob: %w", err)
		}
		e.logger.Warn("blob already missing", zap.Int64("file_id", int64(f.ID)), zap.String("handle", f.Handle.String()))
	}
	return s.Files().DeleteFile(ctx, f.ID)
}

func (e *StorageEngine) CountFiles(ctx context.Context, ownerID user.ID) (int, error) {
	n, err := e.tx.Files().CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func (e *StorageEngine) inc(label string) {
	if e.mCounter != nil {
		e.mCounter.WithLabelValues(label).Inc()
	}
}

func (e *StorageEngine) publish(ev mq.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

func eventFile(f *file.File) map[string]any {
	return map[string]any{
		"original_name": f.OriginalName,
		"file_size":     f.Size,
		"mime_type":     f.MimeType,
	}
}
