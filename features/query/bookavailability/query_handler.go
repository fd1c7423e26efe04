package bookavailability

import (
	"context"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	Repositories() catalog.Repositories
}

// QueryHandler loads the copies of a book and delegates counting to the pure projection.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler with the provided Store dependency.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{
		store: store,
	}
}

// Handle executes the query workflow: Load -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Availability, error) {
	copies, err := h.store.Repositories().Copies.FindByBookID(ctx, query.BookID)
	if err != nil {
		return Availability{}, err
	}

	return ProjectAvailability(copies, query), nil
}
