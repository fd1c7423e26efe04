package issuespecificcopy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuespecificcopy"
	"github.com/AntonStoeckl/library-catalog/shared/core"
	"github.com/AntonStoeckl/library-catalog/testutil/fakes"
)

var fakeClock = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{BookID: 2, Status: catalog.CopyStatusAvailable})
	handler := issuespecificcopy.NewCommandHandler(store, issuespecificcopy.WithLoanPolicy(core.LoanPolicy{DefaultDays: 21}))

	// act
	result, handlerResult, err := handler.Handle(context.Background(), issuespecificcopy.BuildCommand(id(bookCopy.ID), id(5), 0, fakeClock))

	// assert
	require.NoError(t, err)
	assert.Equal(t, bookCopy.ID, result.BookCopyID)
	require.NotNil(t, result.BookID)
	assert.Equal(t, int64(2), *result.BookID)
	assert.Equal(t, "2024-03-22", result.DueOn.String())
	assert.Equal(t, 1, handlerResult.RetryAttempts)

	stored, _ := store.Copy(bookCopy.ID)
	assert.Equal(t, catalog.CopyStatusIssued, stored.Status)

	borrow, found := store.Borrow(result.BorrowID)
	require.True(t, found)
	assert.Equal(t, catalog.BorrowStatusActive, borrow.Status)
}

func Test_CommandHandler_Handle_Error_CopyIssued(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	bookCopy := store.SeedCopy(catalog.BookCopy{ID: 99, BookID: 2, Status: catalog.CopyStatusIssued})
	handler := issuespecificcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), issuespecificcopy.BuildCommand(id(bookCopy.ID), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindConflict, catalog.KindOf(err))
	assert.Equal(t, "Not available", catalog.MessageOf(err, ""))
	assert.Empty(t, store.Borrows())
}

func Test_CommandHandler_Handle_Error_CopyNotFound(t *testing.T) {
	// setup
	store := fakes.NewMemoryStore()
	handler := issuespecificcopy.NewCommandHandler(store)

	// act
	_, _, err := handler.Handle(context.Background(), issuespecificcopy.BuildCommand(id(42), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindNotFound, catalog.KindOf(err))
	assert.Equal(t, "Copy not found", catalog.MessageOf(err, ""))
}

func Test_CommandHandler_Handle_Error_Validation(t *testing.T) {
	testCases := []struct {
		name            string
		command         issuespecificcopy.Command
		expectedMessage string
	}{
		{name: "missing copy id", command: issuespecificcopy.BuildCommand(nil, id(5), 0, fakeClock), expectedMessage: "bookCopyId required"},
		{name: "missing user id", command: issuespecificcopy.BuildCommand(id(3), nil, 0, fakeClock), expectedMessage: "userId required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			handler := issuespecificcopy.NewCommandHandler(fakes.NewMemoryStore())

			// act
			_, _, err := handler.Handle(context.Background(), tc.command)

			// assert
			require.Error(t, err)
			assert.Equal(t, catalog.KindValidation, catalog.KindOf(err))
			assert.Equal(t, tc.expectedMessage, catalog.MessageOf(err, ""))
		})
	}
}

func Test_CommandHandler_Handle_Error_ZeroCopyID_IsNotFound(t *testing.T) {
	// setup
	handler := issuespecificcopy.NewCommandHandler(fakes.NewMemoryStore())

	// act
	_, _, err := handler.Handle(context.Background(), issuespecificcopy.BuildCommand(id(0), id(5), 0, fakeClock))

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindNotFound, catalog.KindOf(err))
	assert.Equal(t, "Copy not found", catalog.MessageOf(err, ""))
}
