package catalog

import "strings"

// CopyStatus is the free-text status of a physical book copy.
// The borrow workflow only ever writes AVAILABLE and ISSUED.
type CopyStatus string

// BorrowStatus is the lifecycle state of a Borrow record.
type BorrowStatus string

const (
	CopyStatusAvailable CopyStatus = "AVAILABLE"
	CopyStatusIssued    CopyStatus = "ISSUED"
	CopyStatusLost      CopyStatus = "LOST"
	CopyStatusDamaged   CopyStatus = "DAMAGED"

	BorrowStatusActive   BorrowStatus = "ACTIVE"
	BorrowStatusReturned BorrowStatus = "RETURNED"
	BorrowStatusOverdue  BorrowStatus = "OVERDUE" // no producer, kept for data compatibility
)

// NormalizeCopyStatus upper-cases a status as the copy endpoints store it.
func NormalizeCopyStatus(status string) CopyStatus {
	return CopyStatus(strings.ToUpper(status))
}

// IsAvailable compares case-insensitively, as statuses are free text.
func (s CopyStatus) IsAvailable() bool {
	return strings.EqualFold(string(s), string(CopyStatusAvailable))
}

// Author of a book.
type Author struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// Publisher of a book.
type Publisher struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category a book is shelved under.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog title. Author, Publisher and Category are optional references.
type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ISBN            *string    `json:"isbn"`
	Author          *Author    `json:"author"`
	Publisher       *Publisher `json:"publisher"`
	Category        *Category  `json:"category"`
	PublicationYear *int       `json:"publicationYear"`
	ShelfLocation   *string    `json:"shelfLocation"`
}

// BookCopy is a physical, individually barcoded instance of a Book.
type BookCopy struct {
	ID      int64      `json:"id"`
	BookID  int64      `json:"bookId"`
	Barcode *string    `json:"barcode"`
	Status  CopyStatus `json:"status"`
}

// Borrow records that a user has (or had) a specific copy.
// BookID is nullable because it is derived from the copy at issue time.
type Borrow struct {
	BorrowID   int64        `json:"borrowId"`
	UserID     int64        `json:"userId"`
	BookCopyID int64        `json:"bookCopyId"`
	BookID     *int64       `json:"bookId"`
	IssuedOn   Date         `json:"issuedOn"`
	DueOn      Date         `json:"dueOn"`
	ReturnedOn *Date        `json:"returnedOn"`
	Status     BorrowStatus `json:"status"`
	Notes      *string      `json:"notes"`
}

// IsActive reports whether the borrow still holds its copy.
func (b Borrow) IsActive() bool {
	return b.Status == BorrowStatusActive
}
