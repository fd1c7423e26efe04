package issuebookcopy

import (
	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

const (
	failureReasonNoAvailableCopy = "No available copy"
)

// Decide implements the business logic to determine whether a copy of the book can be issued.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: The first AVAILABLE copy of the book, or nil if there is none
//	WHEN: IssueBookCopy command is received
//	THEN: the copy moves to ISSUED and an ACTIVE borrow due after the loan period is opened
//	ERROR: "No available copy" (conflict) if there is no candidate copy
//
// The command must have passed Validate.
func Decide(availableCopy *catalog.BookCopy, command Command, policy core.LoanPolicy) core.DecisionResult[core.Issuance] {
	if availableCopy == nil || !availableCopy.Status.IsAvailable() {
		return core.ErrorDecision[core.Issuance](catalog.Conflict(failureReasonNoAvailableCopy))
	}

	bookID := *command.BookID

	return core.SuccessDecision(
		core.BuildIssuance(
			*availableCopy,
			&bookID,
			*command.UserID,
			command.IssuedOn,
			policy.LoanDays(command.RequestedDays),
		),
	)
}
