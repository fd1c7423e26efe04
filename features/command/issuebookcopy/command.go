package issuebookcopy

import (
	"time"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const (
	commandType = "IssueBookCopy"
)

// Command represents the intent to issue any available copy of a book to a user.
// A nil id was not sent. Zero is a valid id.
type Command struct {
	BookID        *int64
	UserID        *int64
	RequestedDays int
	IssuedOn      catalog.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. The issue date is the calendar day of occurredAt.
// A requestedDays value <= 0 means "use the default loan period".
func BuildCommand(bookID, userID *int64, requestedDays int, occurredAt time.Time) Command {
	return Command{
		BookID:        bookID,
		UserID:        userID,
		RequestedDays: requestedDays,
		IssuedOn:      catalog.DateOf(occurredAt),
	}
}

// Validate checks the required fields.
func (c Command) Validate() error {
	if c.BookID == nil {
		return catalog.Validation("bookId required")
	}

	if c.UserID == nil {
		return catalog.Validation("userId required")
	}

	return nil
}
