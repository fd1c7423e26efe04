// Package bookavailability implements the Book Availability query use case.
//
// It counts all copies of a book and those of them which are AVAILABLE.
// An unknown book simply has zero copies.
package bookavailability
