package catalog

import "context"

// BookRepository persists books. Reads return books with their author,
// publisher and category resolved.
type BookRepository interface {
	FindAll(ctx context.Context) ([]Book, error)

	// FindByID returns ErrRecordNotFound if no book has the id.
	FindByID(ctx context.Context, id int64) (Book, error)

	// SearchByTitle matches a case-insensitive substring of the title.
	SearchByTitle(ctx context.Context, fragment string) ([]Book, error)

	// FindByCategoryName matches the category name case-insensitively and exactly.
	FindByCategoryName(ctx context.Context, name string) ([]Book, error)

	// Save inserts when book.ID is zero, otherwise replaces all mutable fields.
	// Only the ids of Author, Publisher and Category are written.
	Save(ctx context.Context, book Book) (Book, error)

	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id int64) error
}

// BookCopyRepository persists physical copies.
type BookCopyRepository interface {
	FindAll(ctx context.Context) ([]BookCopy, error)
	FindByID(ctx context.Context, id int64) (BookCopy, error)
	FindByBookID(ctx context.Context, bookID int64) ([]BookCopy, error)
	FindByStatus(ctx context.Context, status CopyStatus) ([]BookCopy, error)

	// FindFirstAvailableByBookID returns the lowest-id AVAILABLE copy of the book and locks it
	// for the surrounding transaction. Copies locked by other transactions are skipped.
	// Returns ErrRecordNotFound if there is none.
	FindFirstAvailableByBookID(ctx context.Context, bookID int64) (BookCopy, error)

	// Save inserts when copy.ID is zero, otherwise replaces book, barcode and status.
	Save(ctx context.Context, copy BookCopy) (BookCopy, error)

	// CompareAndSetStatus moves the copy from expected (case-insensitive) to next.
	// Returns ErrConcurrencyConflict if the copy is not in the expected status anymore.
	CompareAndSetStatus(ctx context.Context, id int64, expected CopyStatus, next CopyStatus) error

	Delete(ctx context.Context, id int64) error
}

// BorrowRepository persists borrow records.
type BorrowRepository interface {
	FindByID(ctx context.Context, id int64) (Borrow, error)

	// FindByBookCopyID returns the copy's borrows in insertion order.
	FindByBookCopyID(ctx context.Context, bookCopyID int64) ([]Borrow, error)

	// FindByUserID returns the user's borrows, newest issue date first.
	FindByUserID(ctx context.Context, userID int64) ([]Borrow, error)

	// Save inserts when borrow.BorrowID is zero, otherwise replaces all mutable fields.
	Save(ctx context.Context, borrow Borrow) (Borrow, error)
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Books   BookRepository
	Copies  BookCopyRepository
	Borrows BorrowRepository
}

// TxFunc runs inside a transaction. Returning an error rolls the transaction back.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store gives access to the repositories and runs units of work atomically.
type Store interface {
	// Repositories returns repositories which run each statement on its own.
	Repositories() Repositories

	// WithinTx runs fn in a single transaction: all of its writes are committed, or none.
	WithinTx(ctx context.Context, fn TxFunc) error

	Ping(ctx context.Context) error
}
