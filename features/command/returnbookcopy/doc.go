// Package returnbookcopy implements the Return Book Copy use case.
//
// A return names a copy, a borrow, or both. The handler resolves the ACTIVE borrow to close,
// either directly by its id or by scanning the copy's borrows from newest to oldest, closes it
// and makes the copy AVAILABLE again, all in one transaction.
//
// If no active borrow can be found, the named copy is still forced back to AVAILABLE.
// This recovery keeps copies lendable whose borrow records were lost or closed elsewhere.
// Returning something that is already returned is an idempotent no-op.
package returnbookcopy
