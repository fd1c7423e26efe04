package issuespecificcopy

import (
	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

const (
	failureReasonCopyNotFound = "Copy not found"
	failureReasonNotAvailable = "Not available"
)

// Decide implements the business logic to determine whether the requested copy can be issued.
//
// Business Rules:
//
//	GIVEN: The requested copy, or nil if it does not exist
//	WHEN: IssueSpecificCopy command is received
//	THEN: the copy moves to ISSUED and an ACTIVE borrow for the copy's book is opened
//	ERROR: "Copy not found" (not found) if the copy does not exist
//	ERROR: "Not available" (conflict) if the copy's status is anything but AVAILABLE, in any casing
//
// The command must have passed Validate.
func Decide(requestedCopy *catalog.BookCopy, command Command, policy core.LoanPolicy) core.DecisionResult[core.Issuance] {
	if requestedCopy == nil {
		return core.ErrorDecision[core.Issuance](catalog.NotFound(failureReasonCopyNotFound))
	}

	if !requestedCopy.Status.IsAvailable() {
		return core.ErrorDecision[core.Issuance](catalog.Conflict(failureReasonNotAvailable))
	}

	return core.SuccessDecision(
		core.BuildIssuance(
			*requestedCopy,
			bookIDOf(*requestedCopy),
			*command.UserID,
			command.IssuedOn,
			policy.LoanDays(command.RequestedDays),
		),
	)
}

// bookIDOf is nil for a copy without a book link.
func bookIDOf(bookCopy catalog.BookCopy) *int64 {
	if bookCopy.BookID == 0 {
		return nil
	}

	bookID := bookCopy.BookID

	return &bookID
}
