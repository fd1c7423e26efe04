package borrowhistory

import (
	"context"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	Repositories() catalog.Repositories
}

// QueryHandler loads the borrows and delegates ordering to the pure projection.
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
func (h QueryHandler) Handle(ctx context.Context, query Query) (BorrowHistory, error) {
	borrows, err := h.store.Repositories().Borrows.FindByUserID(ctx, query.UserID)
	if err != nil {
		return BorrowHistory{}, err
	}

	return ProjectBorrowHistory(borrows, query), nil
}
