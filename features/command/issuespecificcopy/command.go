package issuespecificcopy

import (
	"time"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const (
	commandType = "IssueSpecificCopy"
)

// Command represents the intent to issue one particular copy to a user.
// A nil id was not sent. Zero is a valid id.
type Command struct {
	BookCopyID    *int64
	UserID        *int64
	RequestedDays int
	IssuedOn      catalog.Date
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. The issue date is the calendar day of occurredAt.
func BuildCommand(bookCopyID, userID *int64, requestedDays int, occurredAt time.Time) Command {
	return Command{
		BookCopyID:    bookCopyID,
		UserID:        userID,
		RequestedDays: requestedDays,
		IssuedOn:      catalog.DateOf(occurredAt),
	}
}

// Validate checks the required fields.
func (c Command) Validate() error {
	if c.BookCopyID == nil {
		return catalog.Validation("bookCopyId required")
	}

	if c.UserID == nil {
		return catalog.Validation("userId required")
	}

	return nil
}
