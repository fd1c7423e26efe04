package borrowhistory

const (
	queryType = "BorrowHistory"
)

// Query represents the intent to list a user's borrows.
type Query struct {
	UserID int64
}

// BuildQuery creates a new Query with the provided user ID.
func BuildQuery(userID int64) Query {
	return Query{
		UserID: userID,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
