package returnbookcopy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/returnbookcopy"
	"github.com/AntonStoeckl/library-catalog/testutil/fakes"
)

func Test_CommandHandler_Handle_ReturnByCopyID(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	closed := seedBorrow(store, bookCopy.ID, catalog.BorrowStatusReturned)
	active := seedBorrow(store, bookCopy.ID, catalog.BorrowStatusActive)
	handler := returnbookcopy.NewCommandHandler(store)

	// act
	result, handlerResult, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(id(bookCopy.ID), nil, returnDay))

	// assert
	require.NoError(t, err)
	assert.True(t, result.BorrowFound)
	assert.Equal(t, active.BorrowID, result.BorrowID)
	assert.Equal(t, "2024-04-02", result.ReturnedOn.String())
	assert.False(t, handlerResult.Idempotent)

	stored, _ := store.Borrow(active.BorrowID)
	assert.Equal(t, catalog.BorrowStatusReturned, stored.Status)
	require.NotNil(t, stored.ReturnedOn)
	assert.Equal(t, "2024-04-02", stored.ReturnedOn.String())

	untouched, _ := store.Borrow(closed.BorrowID)
	assert.Nil(t, untouched.ReturnedOn)

	storedCopy, _ := store.Copy(bookCopy.ID)
	assert.Equal(t, catalog.CopyStatusAvailable, storedCopy.Status)
}

func Test_CommandHandler_Handle_ReturnByBorrowID_RefetchesCopy(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	active := seedBorrow(store, bookCopy.ID, catalog.BorrowStatusActive)
	handler := returnbookcopy.NewCommandHandler(store)

	// act
	result, _, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(nil, id(active.BorrowID), returnDay))

	// assert
	require.NoError(t, err)
	assert.Equal(t, active.BorrowID, result.BorrowID)

	storedCopy, _ := store.Copy(bookCopy.ID)
	assert.Equal(t, catalog.CopyStatusAvailable, storedCopy.Status)
}

func Test_CommandHandler_Handle_SecondReturnIsIdempotent(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	active := seedBorrow(store, bookCopy.ID, catalog.BorrowStatusActive)
	handler := returnbookcopy.NewCommandHandler(store)
	command := returnbookcopy.BuildCommand(nil, id(active.BorrowID), returnDay)

	_, _, err := handler.Handle(context.Background(), command)
	require.NoError(t, err)

	// act
	result, handlerResult, err := handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.BorrowFound)
	assert.Equal(t, returnbookcopy.NoBorrowNote, result.Note)
	assert.True(t, handlerResult.Idempotent)
	assert.Equal(t, catalog.BorrowStatusReturned, mustBorrow(t, store, active.BorrowID).Status)
}

func Test_CommandHandler_Handle_NoBorrowRecord_ForcesCopyAvailable(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	handler := returnbookcopy.NewCommandHandler(store)

	// act
	result, handlerResult, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(id(bookCopy.ID), nil, returnDay))

	// assert
	require.NoError(t, err)
	assert.False(t, result.BorrowFound)
	assert.Equal(t, "no borrow record found; copy marked AVAILABLE", result.Note)
	assert.False(t, handlerResult.Idempotent)

	storedCopy, _ := store.Copy(bookCopy.ID)
	assert.Equal(t, catalog.CopyStatusAvailable, storedCopy.Status)
}

func Test_CommandHandler_Handle_Error_CopyNotFound(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	handler := returnbookcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(id(404), nil, returnDay))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindNotFound, catalog.KindOf(err))
}

func Test_CommandHandler_Handle_Error_NoIDs(t *testing.T) {
	// setup
	handler := returnbookcopy.NewCommandHandler(fakes.NewMemoryStore())

	// act
	_, _, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(nil, nil, returnDay))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindValidation, catalog.KindOf(err))
}

func seedBorrow(store *fakes.MemoryStore, bookCopyID int64, status catalog.BorrowStatus) catalog.Borrow {
	issuedOn := catalog.DateOf(returnDay).AddDays(-10)

	return store.SeedBorrow(catalog.Borrow{
		UserID:     5,
		BookCopyID: bookCopyID,
		IssuedOn:   issuedOn,
		DueOn:      issuedOn.AddDays(14),
		Status:     status,
	})
}

func mustBorrow(t *testing.T, store *fakes.MemoryStore, id int64) catalog.Borrow {
	t.Helper()

	borrow, found := store.Borrow(id)
	require.True(t, found, "borrow %d should exist", id)

	return borrow
}

func Test_CommandHandler_Handle_Error_ZeroCopyID_IsNotFound(t *testing.T) {
	// setup
	handler := returnbookcopy.NewCommandHandler(fakes.NewMemoryStore())

	// act
	_, _, err := handler.Handle(context.Background(), returnbookcopy.BuildCommand(id(0), nil, returnDay))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindNotFound, catalog.KindOf(err))
	assert.Equal(t, "Copy not found", catalog.MessageOf(err, ""))
}
