package postgresengine

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

func Test_FirstAvailableCopySelect_LocksAndSkipsLockedRows(t *testing.T) {
	// act
	sqlQuery, args, err := firstAvailableCopySelect(7).ToSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "book_copies"`)
	assert.Contains(t, sqlQuery, `UPPER("status")`)
	assert.Contains(t, sqlQuery, `ORDER BY "copy_id" ASC`)
	assert.Contains(t, sqlQuery, "LIMIT")
	assert.Contains(t, sqlQuery, "FOR UPDATE SKIP LOCKED")
	assert.Contains(t, args, int64(7))
	assert.Contains(t, args, "AVAILABLE")
}

func Test_CompareAndSetStatusUpdate_ConditionsOnExpectedStatus(t *testing.T) {
	// act
	sqlQuery, args, err := compareAndSetStatusUpdate(3, "available", catalog.CopyStatusIssued).ToSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "book_copies" SET "status"=`)
	assert.Contains(t, sqlQuery, `"copy_id" = `)
	assert.Contains(t, sqlQuery, `UPPER("status") = `)
	assert.Contains(t, args, "ISSUED")
	assert.Contains(t, args, "AVAILABLE")
	assert.Contains(t, args, int64(3))
}

func Test_BookSelect_JoinsOptionalReferences(t *testing.T) {
	// act
	sqlQuery, _, err := bookSelect().ToSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `LEFT JOIN "authors" AS "a"`)
	assert.Contains(t, sqlQuery, `LEFT JOIN "publishers" AS "p"`)
	assert.Contains(t, sqlQuery, `LEFT JOIN "categories" AS "c"`)
	assert.Contains(t, sqlQuery, `ORDER BY "b"."book_id" ASC`)
}

func Test_TitleContains_EscapesLikeWildcards(t *testing.T) {
	// act
	sqlQuery, args, err := bookSelect().Where(titleContains(`50%_off\`)).ToSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"b"."title" ILIKE `)
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func Test_BorrowRecord_BindsDatesAsDateParameters(t *testing.T) {
	// arrange
	returned := catalog.NewDate(2024, time.May, 10)
	borrow := catalog.Borrow{
		UserID:     5,
		BookCopyID: 9,
		IssuedOn:   catalog.NewDate(2024, time.May, 1),
		DueOn:      catalog.NewDate(2024, time.May, 15),
		ReturnedOn: &returned,
		Status:     catalog.BorrowStatusReturned,
	}

	// act
	sqlQuery, args, err := dialect.Insert(tableBorrows).Rows(borrowRecord(borrow)).Prepared(true).ToSQL()

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, "::date")
	assert.Contains(t, args, "2024-05-01")
	assert.Contains(t, args, "2024-05-15")
	assert.Contains(t, args, "2024-05-10")
	assert.Contains(t, args, "RETURNED")
}

func Test_ClassifyDBError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "pgx unique violation", err: &pgconn.PgError{Code: sqlStateUniqueViolation}, expected: catalog.ErrUniqueViolation},
		{name: "pq foreign key violation", err: &pq.Error{Code: sqlStateForeignKeyViolated}, expected: catalog.ErrForeignKeyViolation},
		{name: "pgx not null violation", err: &pgconn.PgError{Code: sqlStateNotNullViolation}, expected: catalog.ErrNotNullViolation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyDBError(tc.err)

			assert.ErrorIs(t, classified, tc.expected)
			assert.ErrorIs(t, classified, tc.err)
		})
	}

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classifyDBError(plain))
}
