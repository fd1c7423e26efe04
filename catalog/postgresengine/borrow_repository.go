package postgresengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine/internal/adapters"
)

const (
	opFindBorrowByID      = "find_borrow_by_id"
	opFindBorrowsByCopyID = "find_borrows_by_copy_id"
	opFindBorrowsByUserID = "find_borrows_by_user_id"
	opInsertBorrow        = "insert_borrow"
	opUpdateBorrow        = "update_borrow"
	colBorrowID           = "borrow_id"
	colBookCopyID         = "book_copy_id"
	colUserID             = "user_id"
	colIssuedOn           = "issued_on"
)

type borrowRepository struct {
	executor
}

func (r borrowRepository) FindByID(ctx context.Context, id int64) (catalog.Borrow, error) {
	borrows, err := r.findBorrows(ctx, opFindBorrowByID, borrowSelect().Where(goqu.C(colBorrowID).Eq(id)))
	if err != nil {
		return catalog.Borrow{}, err
	}

	if len(borrows) == 0 {
		return catalog.Borrow{}, catalog.ErrRecordNotFound
	}

	return borrows[0], nil
}

func (r borrowRepository) FindByBookCopyID(ctx context.Context, bookCopyID int64) ([]catalog.Borrow, error) {
	ds := borrowSelect().
		Where(goqu.C(colBookCopyID).Eq(bookCopyID)).
		Order(goqu.C(colBorrowID).Asc())

	return r.findBorrows(ctx, opFindBorrowsByCopyID, ds)
}

func (r borrowRepository) FindByUserID(ctx context.Context, userID int64) ([]catalog.Borrow, error) {
	ds := borrowSelect().
		Where(goqu.C(colUserID).Eq(userID)).
		Order(goqu.C(colIssuedOn).Desc(), goqu.C(colBorrowID).Desc())

	return r.findBorrows(ctx, opFindBorrowsByUserID, ds)
}

func (r borrowRepository) Save(ctx context.Context, borrow catalog.Borrow) (catalog.Borrow, error) {
	record := borrowRecord(borrow)

	if borrow.BorrowID == 0 {
		ds := dialect.Insert(tableBorrows).Rows(record).Returning(colBorrowID).Prepared(true)

		if _, err := r.query(ctx, opInsertBorrow, ds, func(rows adapters.DBRows) error {
			return rows.Scan(&borrow.BorrowID)
		}); err != nil {
			return catalog.Borrow{}, err
		}

		return borrow, nil
	}

	ds := dialect.Update(tableBorrows).Set(record).Where(goqu.C(colBorrowID).Eq(borrow.BorrowID)).Prepared(true)

	rowsAffected, err := r.exec(ctx, opUpdateBorrow, ds)
	if err != nil {
		return catalog.Borrow{}, err
	}

	if rowsAffected == 0 {
		return catalog.Borrow{}, catalog.ErrRecordNotFound
	}

	return borrow, nil
}

func (r borrowRepository) findBorrows(ctx context.Context, operation string, ds *goqu.SelectDataset) ([]catalog.Borrow, error) {
	borrows := make([]catalog.Borrow, 0)

	_, err := r.query(ctx, operation, ds, func(rows adapters.DBRows) error {
		borrow, scanErr := scanBorrow(rows)
		if scanErr != nil {
			return scanErr
		}

		borrows = append(borrows, borrow)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return borrows, nil
}

func borrowSelect() *goqu.SelectDataset {
	return dialect.
		From(tableBorrows).
		Select(
			colBorrowID, colUserID, colBookCopyID, colBookID,
			colIssuedOn, "due_on", "returned_on", colStatus, "notes",
		).
		Prepared(true)
}

func borrowRecord(borrow catalog.Borrow) goqu.Record {
	record := goqu.Record{
		colUserID:     borrow.UserID,
		colBookCopyID: borrow.BookCopyID,
		colBookID:     nullable(borrow.BookID),
		colIssuedOn:   dateLiteral(borrow.IssuedOn),
		"due_on":      dateLiteral(borrow.DueOn),
		"returned_on": nil,
		colStatus:     string(borrow.Status),
		"notes":       nullable(borrow.Notes),
	}

	if borrow.ReturnedOn != nil {
		record["returned_on"] = dateLiteral(*borrow.ReturnedOn)
	}

	return record
}

// dateLiteral binds a calendar day as a DATE parameter, independent of the session time zone.
func dateLiteral(d catalog.Date) any {
	if d.IsZero() {
		return nil
	}

	return goqu.L(castDate, d.String())
}

func scanBorrow(rows adapters.DBRows) (catalog.Borrow, error) {
	var (
		borrow     catalog.Borrow
		issuedOn   time.Time
		dueOn      time.Time
		returnedOn *time.Time
		status     string
	)

	err := rows.Scan(
		&borrow.BorrowID, &borrow.UserID, &borrow.BookCopyID, &borrow.BookID,
		&issuedOn, &dueOn, &returnedOn, &status, &borrow.Notes,
	)
	if err != nil {
		return catalog.Borrow{}, err
	}

	borrow.IssuedOn = catalog.DateOf(issuedOn)
	borrow.DueOn = catalog.DateOf(dueOn)
	borrow.Status = catalog.BorrowStatus(status)

	if returnedOn != nil {
		returned := catalog.DateOf(*returnedOn)
		borrow.ReturnedOn = &returned
	}

	return borrow, nil
}
