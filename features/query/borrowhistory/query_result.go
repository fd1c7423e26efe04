package borrowhistory

import "github.com/AntonStoeckl/library-catalog/catalog"

// BorrowHistory represents the query result.
type BorrowHistory struct {
	UserID  int64
	Borrows []catalog.Borrow
	Count   int
}
