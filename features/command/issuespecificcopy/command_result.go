package issuespecificcopy

import "github.com/AntonStoeckl/library-catalog/catalog"

// Result summarizes an issued copy.
type Result struct {
	BookCopyID int64        `json:"bookCopyId"`
	BookID     *int64       `json:"-"`
	BorrowID   int64        `json:"borrowId"`
	IssuedOn   catalog.Date `json:"issuedOn"`
	DueOn      catalog.Date `json:"dueOn"`
}

func resultFrom(borrow catalog.Borrow) Result {
	return Result{
		BookCopyID: borrow.BookCopyID,
		BookID:     borrow.BookID,
		BorrowID:   borrow.BorrowID,
		IssuedOn:   borrow.IssuedOn,
		DueOn:      borrow.DueOn,
	}
}
