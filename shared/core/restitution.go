package core

import "github.com/AntonStoeckl/library-catalog/catalog"

// Restitution is the state change of taking a copy back.
// Borrow is nil if no active borrow was found, Copy is nil if no copy is known.
type Restitution struct {
	Borrow             *catalog.Borrow
	Copy               *catalog.BookCopy
	PreviousCopyStatus catalog.CopyStatus
}

// BuildRestitution closes borrow (if any) on returnedOn and makes bookCopy (if any) AVAILABLE.
func BuildRestitution(borrow *catalog.Borrow, bookCopy *catalog.BookCopy, returnedOn catalog.Date) Restitution {
	var restitution Restitution

	if borrow != nil {
		closed := *borrow
		closed.ReturnedOn = &returnedOn
		closed.Status = catalog.BorrowStatusReturned
		restitution.Borrow = &closed
	}

	if bookCopy != nil {
		freed := *bookCopy
		freed.Status = catalog.CopyStatusAvailable
		restitution.Copy = &freed
		restitution.PreviousCopyStatus = bookCopy.Status
	}

	return restitution
}

// FoundBorrow reports whether a borrow was closed.
func (r Restitution) FoundBorrow() bool {
	return r.Borrow != nil
}
