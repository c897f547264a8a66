package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"lcaload/internal/domain"
	"lcaload/internal/port"
)

type recordRepo struct {
	db *sqlx.DB
}

// NewRecordRepo creates a PostgreSQL-backed RecordStore. Tables and columns
// come from the dataset descriptor.
func NewRecordRepo(db *sqlx.DB) port.RecordStore {
	return &recordRepo{db: db}
}

// insertQuery builds a multi-row INSERT for n records. Upsert datasets update
// every non-key column on natural-key conflict. xmax is 0 only for rows the
// statement inserted, which separates inserts from updates.
func insertQuery(ds *domain.Dataset, n int) string {
	cols := ds.Columns()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(ds.Table))
	b.WriteString(" (")
	b.WriteString(strings.Join(lo.Map(cols, func(c string, _ int) string { return pgIdent(c) }), ", "))
	b.WriteString(") VALUES ")

	p := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(p))
			p++
		}
		b.WriteByte(')')
	}

	if ds.Policy == domain.WritePolicyUpsert && len(ds.NaturalKey) > 0 {
		b.WriteString(" ON CONFLICT (")
		b.WriteString(strings.Join(lo.Map(ds.NaturalKey, func(c string, _ int) string { return pgIdent(c) }), ", "))
		b.WriteString(") DO UPDATE SET ")
		updates := lo.FilterMap(cols, func(c string, _ int) (string, bool) {
			if lo.Contains(ds.NaturalKey, c) {
				return "", false
			}
			return fmt.Sprintf("%s = EXCLUDED.%s", pgIdent(c), pgIdent(c)), true
		})
		b.WriteString(strings.Join(append(updates, "updated_at = NOW()"), ", "))
	}
	b.WriteString(" RETURNING (xmax = 0) AS inserted")
	return b.String()
}

func (r *recordRepo) WriteBatch(ctx context.Context, ds *domain.Dataset, recs []domain.CanonicalRecord) (port.BatchResult, error) {
	var res port.BatchResult
	if len(recs) == 0 {
		return res, nil
	}

	cols := ds.Columns()
	args := make([]interface{}, 0, len(recs)*len(cols))
	for i := range recs {
		for _, c := range cols {
			args = append(args, recs[i].Values[c])
		}
	}

	rows, err := r.db.QueryContext(ctx, insertQuery(ds, len(recs)), args...)
	if err != nil {
		return res, fmt.Errorf("recordRepo.WriteBatch %s: %w", ds.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return port.BatchResult{}, fmt.Errorf("recordRepo.WriteBatch scan: %w", err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	if err := rows.Err(); err != nil {
		return port.BatchResult{}, fmt.Errorf("recordRepo.WriteBatch %s: %w", ds.Table, err)
	}
	return res, nil
}

func (r *recordRepo) ResetYear(ctx context.Context, ds *domain.Dataset, year int) (int64, error) {
	if ds.YearColumn == "" {
		return 0, fmt.Errorf("recordRepo.ResetYear: dataset %s has no year column", ds.Name)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", pgIdent(ds.Table), pgIdent(ds.YearColumn))
	result, err := r.db.ExecContext(ctx, query, year)
	if err != nil {
		return 0, fmt.Errorf("recordRepo.ResetYear: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recordRepo.ResetYear rows affected: %w", err)
	}
	return n, nil
}
