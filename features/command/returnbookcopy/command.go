package returnbookcopy

import (
	"time"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const (
	commandType = "ReturnBookCopy"
)

// Command represents the intent to take a copy back. Either id may be nil, but not both.
type Command struct {
	BookCopyID *int64
	BorrowID   *int64
	ReturnedOn catalog.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. The return date is the calendar day of occurredAt.
func BuildCommand(bookCopyID, borrowID *int64, occurredAt time.Time) Command {
	return Command{
		BookCopyID: bookCopyID,
		BorrowID:   borrowID,
		ReturnedOn: catalog.DateOf(occurredAt),
	}
}

// Validate checks that at least one id is given.
func (c Command) Validate() error {
	if c.BookCopyID == nil && c.BorrowID == nil {
		return catalog.Validation("bookCopyId or borrowId required")
	}

	return nil
}
