package bookavailability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/query/bookavailability"
	"github.com/AntonStoeckl/library-catalog/testutil/fakes"
)

func Test_QueryHandler_Handle_CountsCopies(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	store.SeedCopy(catalog.BookCopy{BookID: 1, Status: "available"})
	store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusDamaged})
	store.SeedCopy(catalog.BookCopy{BookID: 2, Status: catalog.CopyStatusAvailable})
	handler := bookavailability.NewQueryHandler(store)

	// act
	availability, err := handler.Handle(context.Background(), bookavailability.BuildQuery(1))

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookavailability.Availability{BookID: 1, TotalCopies: 4, AvailableCopies: 2}, availability)
}

func Test_QueryHandler_Handle_UnknownBook(t *testing.T) {
	// setup
	handler := bookavailability.NewQueryHandler(fakes.NewMemoryStore())

	// act
	availability, err := handler.Handle(context.Background(), bookavailability.BuildQuery(9))

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookavailability.Availability{BookID: 9}, availability)
}
