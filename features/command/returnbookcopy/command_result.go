package returnbookcopy

import "github.com/AntonStoeckl/library-catalog/catalog"

// NoBorrowNote is reported when a return did not find an active borrow.
const NoBorrowNote = "no borrow record found; copy marked AVAILABLE"

// Result summarizes a return. BorrowID and ReturnedOn are only set if a borrow was closed.
type Result struct {
	BorrowFound bool
	BorrowID    int64
	ReturnedOn  catalog.Date
	Note        string
}

func resultFrom(borrow *catalog.Borrow) Result {
	if borrow == nil {
		return Result{Note: NoBorrowNote}
	}

	return Result{
		BorrowFound: true,
		BorrowID:    borrow.BorrowID,
		ReturnedOn:  *borrow.ReturnedOn,
	}
}
