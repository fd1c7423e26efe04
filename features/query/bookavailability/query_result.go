package bookavailability

// Availability represents the query result.
type Availability struct {
	BookID          int64 `json:"bookId"`
	TotalCopies     int   `json:"totalCopies"`
	AvailableCopies int   `json:"availableCopies"`
}
