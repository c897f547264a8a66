package port

import (
	"context"

	"lcaload/internal/domain"
)

// BatchResult splits a committed batch into new and overwritten rows.
type BatchResult struct {
	Inserted int
	Updated  int
}

// RecordStore commits canonical records according to a dataset's write policy.
type RecordStore interface {
	// WriteBatch commits all records or none.
	WriteBatch(ctx context.Context, ds *domain.Dataset, recs []domain.CanonicalRecord) (BatchResult, error)
	// ResetYear deletes a dataset year ahead of a replace-policy import.
	ResetYear(ctx context.Context, ds *domain.Dataset, year int) (int64, error)
}

// WageAreaRepository backfills area names on stored wage rows.
type WageAreaRepository interface {
	UpdateAreaNames(ctx context.Context, year int, names map[string]string) (int64, error)
}
