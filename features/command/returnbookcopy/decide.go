package returnbookcopy

import (
	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

const (
	failureReasonCopyNotFound = "Copy not found"
)

// State is what the handler loaded for a return.
type State struct {
	// RequestedCopy is the copy named by the command, nil if none was named or it does not exist.
	RequestedCopy *catalog.BookCopy

	// ActiveBorrow is the borrow to close, nil if no ACTIVE borrow was found.
	ActiveBorrow *catalog.Borrow

	// BorrowedCopy is the copy referenced by ActiveBorrow. It is only loaded if no copy was named.
	BorrowedCopy *catalog.BookCopy
}

// Decide implements the business logic of a return.
//
// Business Rules:
//
//	GIVEN: the loaded State
//	WHEN: ReturnBookCopy command is received
//	THEN: the active borrow is RETURNED on the return date and its copy is AVAILABLE
//	RECOVERY: without an active borrow the named copy is made AVAILABLE anyway
//	ERROR: "Copy not found" (not found) if a copy id was given but the copy does not exist
//	IDEMPOTENCY: without an active borrow and with no copy to fix, nothing is written
func Decide(s State, command Command) core.DecisionResult[core.Restitution] {
	if command.BookCopyID != nil && s.RequestedCopy == nil {
		return core.ErrorDecision[core.Restitution](catalog.NotFound(failureReasonCopyNotFound))
	}

	if s.ActiveBorrow == nil {
		if s.RequestedCopy == nil || s.RequestedCopy.Status == catalog.CopyStatusAvailable {
			return core.IdempotentDecision[core.Restitution]()
		}

		return core.SuccessDecision(core.BuildRestitution(nil, s.RequestedCopy, command.ReturnedOn))
	}

	bookCopy := s.RequestedCopy
	if bookCopy == nil {
		bookCopy = s.BorrowedCopy
	}

	return core.SuccessDecision(core.BuildRestitution(s.ActiveBorrow, bookCopy, command.ReturnedOn))
}

// latestActive returns the most recently inserted ACTIVE borrow, or nil.
func latestActive(borrows []catalog.Borrow) *catalog.Borrow {
	for i := len(borrows) - 1; i >= 0; i-- {
		if borrows[i].IsActive() {
			return &borrows[i]
		}
	}

	return nil
}
