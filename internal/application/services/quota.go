package services

import (
	"fmt"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
)

type Quota struct {
	maxFiles   int
	maxPayload int64
}

func NewQuota(maxFiles int, maxPayload int64) ports.QuotaEnforcer {
	return &Quota{maxFiles: maxFiles, maxPayload: maxPayload}
}

func (q *Quota) CheckCount(current int) error {
	if current >= q.maxFiles {
		return fmt.Errorf("%w: limit of %d files reached", apperr.ErrQuotaExceeded, q.maxFiles)
	}
	return nil
}

func (q *Quota) CheckSize(size int64) error {
	if size < 0 {
		return apperr.NewValidation("file", "size must not be negative")
	}
	if size > q.maxPayload {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", apperr.ErrPayloadTooLarge, size, q.maxPayload)
	}
	return nil
}

func (q *Quota) MaxPayloadBytes() int64 { return q.maxPayload }
