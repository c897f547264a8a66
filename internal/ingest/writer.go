package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"

	"lcaload/internal/domain"
	"lcaload/internal/port"
)

// Writer commits canonical records in bounded batches.
type Writer struct {
	store     port.RecordStore
	batchSize int
}

// NewWriter returns a Writer committing up to batchSize records per batch.
func NewWriter(store port.RecordStore, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Writer{store: store, batchSize: batchSize}
}

// Dedup drops records superseded by a later record with the same natural
// key. Survivors keep the position of their last occurrence. Datasets without
// a natural key are returned unchanged.
func Dedup(ds *domain.Dataset, recs []domain.CanonicalRecord) (kept, superseded []domain.CanonicalRecord) {
	if len(ds.NaturalKey) == 0 {
		return recs, nil
	}
	last := make(map[string]int, len(recs))
	for i := range recs {
		last[recs[i].Key(ds.NaturalKey)] = i
	}
	kept = make([]domain.CanonicalRecord, 0, len(last))
	for i := range recs {
		if last[recs[i].Key(ds.NaturalKey)] == i {
			kept = append(kept, recs[i])
		} else {
			superseded = append(superseded, recs[i])
		}
	}
	return kept, superseded
}

// write dedups recs and commits them batch by batch into t. A failed batch
// is recorded and the remaining batches still run; only cancellation stops
// the window.
func (w *Writer) write(ctx context.Context, ds *domain.Dataset, recs []domain.CanonicalRecord, t *tally) error {
	kept, superseded := Dedup(ds, recs)
	for i := range superseded {
		t.skip(domain.SkippedRecordDiagnostic{
			LineNumber:          superseded[i].Line,
			Reason:              domain.SkipDuplicateKey,
			NaturalKeyFragments: fragments(ds, superseded[i].Values),
		})
	}

	for start := 0; start < len(kept); start += w.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+w.batchSize, len(kept))
		batch := kept[start:end]

		res, err := w.store.WriteBatch(ctx, ds, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Printf("ingest.Writer.write: batch of %d (lines %d-%d) failed for %s: %v",
				len(batch), batch[0].Line, batch[len(batch)-1].Line, ds.Table, err)
			t.batchError(domain.BatchErrorDiagnostic{
				FirstLine: batch[0].Line,
				LastLine:  batch[len(batch)-1].Line,
				Records:   len(batch),
				Detail:    describeBatchError(err),
			})
			continue
		}
		t.inserted += res.Inserted
		t.updated += res.Updated
	}
	return nil
}

// describeBatchError renders a database error with its SQLSTATE and detail.
func describeBatchError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := fmt.Sprintf("SQLSTATE %s: %s", pgErr.Code, pgErr.Message)
		if pgErr.Detail != "" {
			msg += " (" + pgErr.Detail + ")"
		}
		if pgErr.ColumnName != "" {
			msg += " column=" + pgErr.ColumnName
		}
		return msg
	}
	return err.Error()
}

// fragments extracts the diagnostic fields of a coerced record.
func fragments(ds *domain.Dataset, values map[string]any) map[string]string {
	out := make(map[string]string, len(ds.DiagnosticFields))
	for _, f := range ds.DiagnosticFields {
		if s, ok := values[f].(string); ok && s != "" {
			out[f] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
