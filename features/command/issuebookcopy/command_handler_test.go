package issuebookcopy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuebookcopy"
	"github.com/AntonStoeckl/library-catalog/shared/shell"
	"github.com/AntonStoeckl/library-catalog/testutil/fakes"
)

var fakeClock = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	store := fakes.NewMemoryStore()
	issued := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusIssued})
	available := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	other := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	result, handlerResult, err := handler.Handle(ctx, issuebookcopy.BuildCommand(id(1), id(5), 7, fakeClock))

	// assert
	require.NoError(t, err)
	assert.Equal(t, available.ID, result.BookCopyID)
	assert.Equal(t, int64(1), result.BookID)
	assert.NotZero(t, result.BorrowID)
	assert.Equal(t, "2024-03-01", result.IssuedOn.String())
	assert.Equal(t, "2024-03-08", result.DueOn.String())
	assert.False(t, handlerResult.Idempotent)
	assert.Equal(t, 1, handlerResult.RetryAttempts)

	assertCopyStatus(t, store, available.ID, catalog.CopyStatusIssued)
	assertCopyStatus(t, store, issued.ID, catalog.CopyStatusIssued)
	assertCopyStatus(t, store, other.ID, catalog.CopyStatusAvailable)

	borrow, found := store.Borrow(result.BorrowID)
	require.True(t, found)
	assert.Equal(t, catalog.BorrowStatusActive, borrow.Status)
	assert.Equal(t, int64(5), borrow.UserID)
	assert.Equal(t, available.ID, borrow.BookCopyID)
	assert.Nil(t, borrow.ReturnedOn)
}

func Test_CommandHandler_Handle_AcceptsLowerCaseAvailableStatus(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: "available"})
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	result, _, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(5), 0, fakeClock))

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookCopy.ID, result.BookCopyID)
	assert.Equal(t, "2024-03-15", result.DueOn.String())
	assertCopyStatus(t, store, bookCopy.ID, catalog.CopyStatusIssued)
}

func Test_CommandHandler_Handle_Error_NoAvailableCopy(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusLost})
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	_, handlerResult, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindConflict, catalog.KindOf(err))
	assert.Equal(t, 1, handlerResult.RetryAttempts, "business refusals are not retried")
	assertCopyStatus(t, store, bookCopy.ID, catalog.CopyStatusLost)
	assert.Empty(t, store.Borrows())
}

func Test_CommandHandler_Handle_Error_Validation(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), nil, 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindValidation, catalog.KindOf(err))
	assert.Zero(t, store.CommittedTxCount()+store.RolledBackTxCount(), "no transaction for invalid commands")
}

func Test_CommandHandler_Handle_RetriesOnConcurrencyConflict(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	store.InjectConflicts(2)
	handler := issuebookcopy.NewCommandHandler(
		store,
		issuebookcopy.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	)

	// act
	result, handlerResult, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(5), 0, fakeClock))

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookCopy.ID, result.BookCopyID)
	assert.Equal(t, 3, handlerResult.RetryAttempts)
	assert.Equal(t, 2, store.RolledBackTxCount())
	assert.Len(t, store.Borrows(), 1, "rolled back attempts leave no borrow behind")
}

func Test_CommandHandler_Handle_RetriesExhausted(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	store.InjectConflicts(10)
	handler := issuebookcopy.NewCommandHandler(
		store,
		issuebookcopy.WithRetryOptions(shell.WithMaxAttempts(3), shell.WithBaseDelay(time.Millisecond)),
	)

	// act
	_, handlerResult, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(5), 0, fakeClock))

	// assert
	assert.ErrorIs(t, err, catalog.ErrConcurrencyConflict)
	assert.True(t, handlerResult.RetriesExhausted)
	assert.Equal(t, 3, handlerResult.RetryAttempts)
	assertCopyStatus(t, store, bookCopy.ID, catalog.CopyStatusAvailable)
	assert.Empty(t, store.Borrows())
}

func Test_CommandHandler_Handle_RollsBackCopyWhenBorrowCannotBeSaved(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	store.FailBorrowSaves(errors.New("disk full"))
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assertCopyStatus(t, store, bookCopy.ID, catalog.CopyStatusAvailable)
}

func assertCopyStatus(t *testing.T, store *fakes.MemoryStore, id int64, expected catalog.CopyStatus) {
	t.Helper()

	bookCopy, found := store.Copy(id)
	require.True(t, found, "copy %d should exist", id)
	assert.Equal(t, expected, bookCopy.Status, "status of copy %d", id)
}

func Test_CommandHandler_Handle_ZeroUserID_IsIssued(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	result, _, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(1), id(0), 0, fakeClock))

	// assert
	require.NoError(t, err)

	borrow, found := store.Borrow(result.BorrowID)
	require.True(t, found)
	assert.Equal(t, int64(0), borrow.UserID)
	assertCopyStatus(t, store, bookCopy.ID, catalog.CopyStatusIssued)
}

func Test_CommandHandler_Handle_Error_ZeroBookID_HasNoAvailableCopy(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	store.SeedCopy(catalog.BookCopy{BookID: 1, Status: catalog.CopyStatusAvailable})
	handler := issuebookcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), issuebookcopy.BuildCommand(id(0), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindConflict, catalog.KindOf(err))
	assert.Equal(t, "No available copy", catalog.MessageOf(err, ""))
}
