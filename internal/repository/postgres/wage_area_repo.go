package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"lcaload/internal/port"
)

// areaPatchBatchSize bounds the (area_code, area_name) pairs per UPDATE.
const areaPatchBatchSize = 500

type wageAreaRepo struct {
	db *sqlx.DB
}

// NewWageAreaRepo creates a PostgreSQL-backed WageAreaRepository.
func NewWageAreaRepo(db *sqlx.DB) port.WageAreaRepository {
	return &wageAreaRepo{db: db}
}

func areaPatchQuery(pairs int) string {
	var b strings.Builder
	b.WriteString(`UPDATE prevailing_wages AS w
		SET area_name = v.area_name, updated_at = NOW()
		FROM (VALUES `)
	for i := 0; i < pairs; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "($%d::text, $%d::text)", 2*i+2, 2*i+3)
	}
	b.WriteString(`) AS v(area_code, area_name)
		WHERE w.wage_year = $1
		  AND w.area_code = v.area_code
		  AND w.area_name IS DISTINCT FROM v.area_name`)
	return b.String()
}

func (r *wageAreaRepo) UpdateAreaNames(ctx context.Context, year int, names map[string]string) (int64, error) {
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var total int64
	for i := 0; i < len(codes); i += areaPatchBatchSize {
		end := min(i+areaPatchBatchSize, len(codes))
		batch := codes[i:end]

		args := make([]interface{}, 0, 1+2*len(batch))
		args = append(args, year)
		for _, code := range batch {
			args = append(args, code, names[code])
		}

		result, err := r.db.ExecContext(ctx, areaPatchQuery(len(batch)), args...)
		if err != nil {
			return total, fmt.Errorf("wageAreaRepo.UpdateAreaNames batch at %d: %w", i, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("wageAreaRepo.UpdateAreaNames rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}
