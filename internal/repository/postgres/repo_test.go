package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcaload/internal/domain"
	"lcaload/internal/repository/postgres"
)

func newMockDB(t *testing.T, matchers ...sqlmock.QueryMatcher) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error
	if len(matchers) > 0 {
		db, mock, err = sqlmock.New(sqlmock.QueryMatcherOption(matchers[0]))
	} else {
		db, mock, err = sqlmock.New()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func testDataset(policy domain.WritePolicy) *domain.Dataset {
	return &domain.Dataset{
		Name:       "test",
		Table:      "t",
		YearColumn: "yr",
		Fields: []domain.Field{
			{Name: "a", Kind: domain.FieldString, Required: true},
			{Name: "b", Kind: domain.FieldNumber},
		},
		NaturalKey: []string{"a"},
		Policy:     policy,
	}
}

func testRecords() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{Line: 2, Values: map[string]any{"yr": 2024, "a": "A1", "b": 1.5}},
		{Line: 3, Values: map[string]any{"yr": 2024, "a": "A2", "b": nil}},
	}
}

func TestRecordRepo_WriteBatch_Upsert(t *testing.T) {
	db, mock := newMockDB(t, sqlmock.QueryMatcherEqual)
	mock.ExpectQuery(`INSERT INTO "t" ("yr", "a", "b") VALUES ($1, $2, $3), ($4, $5, $6)` +
		` ON CONFLICT ("a") DO UPDATE SET "yr" = EXCLUDED."yr", "b" = EXCLUDED."b", updated_at = NOW()` +
		` RETURNING (xmax = 0) AS inserted`).
		WithArgs(2024, "A1", 1.5, 2024, "A2", nil).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true).AddRow(false))

	res, err := postgres.NewRecordRepo(db).WriteBatch(context.Background(), testDataset(domain.WritePolicyUpsert), testRecords())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_WriteBatch_AppendHasNoConflictClause(t *testing.T) {
	db, mock := newMockDB(t, sqlmock.QueryMatcherEqual)
	mock.ExpectQuery(`INSERT INTO "t" ("yr", "a", "b") VALUES ($1, $2, $3), ($4, $5, $6) RETURNING (xmax = 0) AS inserted`).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true).AddRow(true))

	res, err := postgres.NewRecordRepo(db).WriteBatch(context.Background(), testDataset(domain.WritePolicyReplace), testRecords())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_WriteBatch_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	res, err := postgres.NewRecordRepo(db).WriteBatch(context.Background(), testDataset(domain.WritePolicyUpsert), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_WriteBatch_PgErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO "t"`).
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type numeric"})

	_, err := postgres.NewRecordRepo(db).WriteBatch(context.Background(), testDataset(domain.WritePolicyUpsert), testRecords())
	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "22P02", pgErr.Code)
}

func TestRecordRepo_ResetYear(t *testing.T) {
	db, mock := newMockDB(t, sqlmock.QueryMatcherEqual)
	mock.ExpectExec(`DELETE FROM "t" WHERE "yr" = $1`).
		WithArgs(2024).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := postgres.NewRecordRepo(db).ResetYear(context.Background(), testDataset(domain.WritePolicyReplace), 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_ResetYear_RequiresYearColumn(t *testing.T) {
	db, _ := newMockDB(t)
	ds := testDataset(domain.WritePolicyReplace)
	ds.YearColumn = ""
	_, err := postgres.NewRecordRepo(db).ResetYear(context.Background(), ds, 2024)
	assert.Error(t, err)
}

func TestWageAreaRepo_UpdateAreaNames(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE prevailing_wages AS w\s+SET area_name = v.area_name, updated_at = NOW\(\)\s+FROM \(VALUES \(\$2::text, \$3::text\), \(\$4::text, \$5::text\)\)`).
		WithArgs(2024, "10180", "Abilene, TX", "11500", "Anniston, AL").
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := postgres.NewWageAreaRepo(db).UpdateAreaNames(context.Background(), 2024, map[string]string{
		"11500": "Anniston, AL",
		"10180": "Abilene, TX",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWageAreaRepo_UpdateAreaNames_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	n, err := postgres.NewWageAreaRepo(db).UpdateAreaNames(context.Background(), 2024, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
