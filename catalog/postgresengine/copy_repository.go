package postgresengine

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine/internal/adapters"
)

const (
	opFindAllCopies          = "find_all_copies"
	opFindCopyByID           = "find_copy_by_id"
	opFindCopiesByBookID     = "find_copies_by_book_id"
	opFindCopiesByStatus     = "find_copies_by_status"
	opFindFirstAvailableCopy = "find_first_available_copy"
	opInsertCopy             = "insert_copy"
	opUpdateCopy             = "update_copy"
	opCompareAndSetStatus    = "compare_and_set_copy_status"
	opDeleteCopy             = "delete_copy"
	colCopyID                = "copy_id"
	colStatus                = "status"
)

type copyRepository struct {
	executor
}

func (r copyRepository) FindAll(ctx context.Context) ([]catalog.BookCopy, error) {
	return r.findCopies(ctx, opFindAllCopies, copySelect())
}

func (r copyRepository) FindByID(ctx context.Context, id int64) (catalog.BookCopy, error) {
	return r.findOne(ctx, opFindCopyByID, copySelect().Where(goqu.C(colCopyID).Eq(id)))
}

func (r copyRepository) FindByBookID(ctx context.Context, bookID int64) ([]catalog.BookCopy, error) {
	return r.findCopies(ctx, opFindCopiesByBookID, copySelect().Where(goqu.C(colBookID).Eq(bookID)))
}

func (r copyRepository) FindByStatus(ctx context.Context, status catalog.CopyStatus) ([]catalog.BookCopy, error) {
	return r.findCopies(ctx, opFindCopiesByStatus, copySelect().Where(goqu.C(colStatus).Eq(string(status))))
}

func (r copyRepository) FindFirstAvailableByBookID(ctx context.Context, bookID int64) (catalog.BookCopy, error) {
	return r.findOne(ctx, opFindFirstAvailableCopy, firstAvailableCopySelect(bookID))
}

func (r copyRepository) Save(ctx context.Context, bookCopy catalog.BookCopy) (catalog.BookCopy, error) {
	record := goqu.Record{
		colBookID: bookCopy.BookID,
		"barcode": nullable(bookCopy.Barcode),
		colStatus: string(bookCopy.Status),
	}

	if bookCopy.ID == 0 {
		ds := dialect.Insert(tableCopies).Rows(record).Returning(colCopyID).Prepared(true)

		if _, err := r.query(ctx, opInsertCopy, ds, func(rows adapters.DBRows) error {
			return rows.Scan(&bookCopy.ID)
		}); err != nil {
			return catalog.BookCopy{}, err
		}

		return bookCopy, nil
	}

	ds := dialect.Update(tableCopies).Set(record).Where(goqu.C(colCopyID).Eq(bookCopy.ID)).Prepared(true)

	rowsAffected, err := r.exec(ctx, opUpdateCopy, ds)
	if err != nil {
		return catalog.BookCopy{}, err
	}

	if rowsAffected == 0 {
		return catalog.BookCopy{}, catalog.ErrRecordNotFound
	}

	return bookCopy, nil
}

func (r copyRepository) CompareAndSetStatus(
	ctx context.Context,
	id int64,
	expected catalog.CopyStatus,
	next catalog.CopyStatus,
) error {
	rowsAffected, err := r.exec(ctx, opCompareAndSetStatus, compareAndSetStatusUpdate(id, expected, next))
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		r.store.logOperationContext(ctx, logMsgConcurrencyConflict, logAttrOperation, opCompareAndSetStatus)
		r.store.recordConcurrencyConflictMetrics(ctx, opCompareAndSetStatus)

		return catalog.ErrConcurrencyConflict
	}

	return nil
}

func (r copyRepository) Delete(ctx context.Context, id int64) error {
	ds := dialect.Delete(tableCopies).Where(goqu.C(colCopyID).Eq(id)).Prepared(true)

	_, err := r.exec(ctx, opDeleteCopy, ds)

	return err
}

func (r copyRepository) findOne(ctx context.Context, operation string, ds *goqu.SelectDataset) (catalog.BookCopy, error) {
	copies, err := r.findCopies(ctx, operation, ds)
	if err != nil {
		return catalog.BookCopy{}, err
	}

	if len(copies) == 0 {
		return catalog.BookCopy{}, catalog.ErrRecordNotFound
	}

	return copies[0], nil
}

func (r copyRepository) findCopies(ctx context.Context, operation string, ds *goqu.SelectDataset) ([]catalog.BookCopy, error) {
	copies := make([]catalog.BookCopy, 0)

	_, err := r.query(ctx, operation, ds, func(rows adapters.DBRows) error {
		var (
			bookCopy catalog.BookCopy
			status   string
		)

		if scanErr := rows.Scan(&bookCopy.ID, &bookCopy.BookID, &bookCopy.Barcode, &status); scanErr != nil {
			return scanErr
		}

		bookCopy.Status = catalog.CopyStatus(status)
		copies = append(copies, bookCopy)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return copies, nil
}

func copySelect() *goqu.SelectDataset {
	return dialect.
		From(tableCopies).
		Select(colCopyID, colBookID, "barcode", colStatus).
		Order(goqu.C(colCopyID).Asc()).
		Prepared(true)
}

// firstAvailableCopySelect locks the chosen row; rows locked by concurrent issuers are skipped
// so that two borrowers of the same book do not wait for each other.
func firstAvailableCopySelect(bookID int64) *goqu.SelectDataset {
	return copySelect().
		Where(
			goqu.C(colBookID).Eq(bookID),
			upperStatusIs(catalog.CopyStatusAvailable),
		).
		Limit(1).
		ForUpdate(exp.SkipLocked)
}

func compareAndSetStatusUpdate(id int64, expected, next catalog.CopyStatus) *goqu.UpdateDataset {
	return dialect.
		Update(tableCopies).
		Set(goqu.Record{colStatus: string(next)}).
		Where(
			goqu.C(colCopyID).Eq(id),
			upperStatusIs(expected),
		).
		Prepared(true)
}

func upperStatusIs(status catalog.CopyStatus) exp.Expression {
	return goqu.Func("UPPER", goqu.C(colStatus)).Eq(strings.ToUpper(string(status)))
}
