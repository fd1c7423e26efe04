// Package issuebookcopy implements the Issue Book Copy use case (borrow by book id).
//
// The handler picks the first AVAILABLE copy of the requested book, moves it to ISSUED
// and opens an ACTIVE borrow for the user, all within one transaction.
// It follows the Load-Decide-Persist pattern: the CommandHandler loads the candidate copy,
// the pure Decide function builds the state change, and the handler persists it.
//
// The copy is moved with a compare-and-set on its status. If a concurrent request issued the
// same copy in the meantime, the transaction is rolled back and retried with exponential backoff,
// so the retry picks the next available copy.
package issuebookcopy
