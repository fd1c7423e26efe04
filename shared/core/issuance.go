package core

import "github.com/AntonStoeckl/library-catalog/catalog"

// Issuance is the state change of handing a copy to a user: the copy moves
// from its previous status to ISSUED and a new ACTIVE borrow is opened.
type Issuance struct {
	Copy           catalog.BookCopy
	PreviousStatus catalog.CopyStatus
	Borrow         catalog.Borrow
}

// BuildIssuance issues bookCopy to userID on issuedOn for the given number of days.
// bookID is recorded on the borrow as is, it may be nil.
func BuildIssuance(
	bookCopy catalog.BookCopy,
	bookID *int64,
	userID int64,
	issuedOn catalog.Date,
	days int,
) Issuance {
	previous := bookCopy.Status
	bookCopy.Status = catalog.CopyStatusIssued

	return Issuance{
		Copy:           bookCopy,
		PreviousStatus: previous,
		Borrow: catalog.Borrow{
			UserID:     userID,
			BookCopyID: bookCopy.ID,
			BookID:     bookID,
			IssuedOn:   issuedOn,
			DueOn:      issuedOn.AddDays(days),
			Status:     catalog.BorrowStatusActive,
		},
	}
}
