package services

import (
	"context"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/file"
)

type QueryEngine struct {
	tx ports.TxManager
}

func NewQueryEngine(tx ports.TxManager) ports.QueryEngine {
	return &QueryEngine{tx: tx}
}

// List reads the page and the total from one snapshot so the summary always
// describes the rows returned. Callers authorise file.All() scope beforehand.
func (qe *QueryEngine) List(ctx context.Context, q file.Query) (*ports.Listing, error) {
	if q.Page.Number < 1 || q.Page.Size < 1 {
		return nil, apperr.NewValidation("page", "page and limit must be positive")
	}

	var (
		items file.Files
		total int
	)
	err := qe.tx.InSnapshot(ctx, func(ctx context.Context, s ports.Session) (err error) {
		if items, err = s.Files().ListFiles(ctx, q); err != nil {
			return err
		}
		total, err = s.Files().CountMatching(ctx, q)
		return err
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if items == nil {
		items = file.Files{}
	}

	return &ports.Listing{
		Items:   items,
		Summary: file.NewSummary(q.Page, total),
	}, nil
}
