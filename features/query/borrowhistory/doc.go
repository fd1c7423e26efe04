// Package borrowhistory implements the Borrow History query use case.
//
// It lists all borrow records of a user, active and returned, newest issue date first.
// This is a read-only operation.
package borrowhistory
