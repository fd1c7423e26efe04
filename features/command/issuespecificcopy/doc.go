// Package issuespecificcopy implements the Issue Specific Copy use case (borrow by copy id).
//
// The handler loads the requested copy, refuses it unless it is AVAILABLE, moves it to ISSUED
// and opens an ACTIVE borrow for the user within one transaction. The book id of the borrow is
// taken from the copy.
package issuespecificcopy
