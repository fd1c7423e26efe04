package bookavailability

import "github.com/AntonStoeckl/library-catalog/catalog"

// ProjectAvailability counts the copies of the queried book.
// The AVAILABLE status is compared case-insensitively.
func ProjectAvailability(copies []catalog.BookCopy, query Query) Availability {
	availability := Availability{BookID: query.BookID}

	for _, bookCopy := range copies {
		if bookCopy.BookID != query.BookID {
			continue
		}

		availability.TotalCopies++

		if bookCopy.Status.IsAvailable() {
			availability.AvailableCopies++
		}
	}

	return availability
}
