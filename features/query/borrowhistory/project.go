package borrowhistory

import (
	"slices"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

// ProjectBorrowHistory orders the user's borrows by issue date, newest first.
// Borrows issued on the same day are ordered by id, newest first.
//
// Query Logic:
//
//	GIVEN: A user with UserID
//	WHEN: BorrowHistory query is executed
//	THEN: all borrows of the user are returned, ACTIVE and RETURNED alike
func ProjectBorrowHistory(borrows []catalog.Borrow, query Query) BorrowHistory {
	ordered := slices.Clone(borrows)
	if ordered == nil {
		ordered = make([]catalog.Borrow, 0)
	}

	slices.SortStableFunc(ordered, func(a, b catalog.Borrow) int {
		if c := b.IssuedOn.Time().Compare(a.IssuedOn.Time()); c != 0 {
			return c
		}

		switch {
		case a.BorrowID > b.BorrowID:
			return -1
		case a.BorrowID < b.BorrowID:
			return 1
		default:
			return 0
		}
	})

	return BorrowHistory{
		UserID:  query.UserID,
		Borrows: ordered,
		Count:   len(ordered),
	}
}
