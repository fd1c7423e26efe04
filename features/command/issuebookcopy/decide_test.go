package issuebookcopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuebookcopy"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

func Test_Decide_IssuesAvailableCopy(t *testing.T) {
	// arrange
	occurredAt := time.Date(2024, time.March, 1, 15, 30, 0, 0, time.UTC)
	command := issuebookcopy.BuildCommand(id(1), id(5), 7, occurredAt)
	candidate := &catalog.BookCopy{ID: 3, BookID: 1, Status: catalog.CopyStatusAvailable}

	// act
	decision := issuebookcopy.Decide(candidate, command, core.DefaultLoanPolicy())

	// assert
	require.NoError(t, decision.HasError())
	assert.True(t, decision.HasChangeToPersist())

	issuance := decision.Change
	assert.Equal(t, catalog.CopyStatusIssued, issuance.Copy.Status)
	assert.Equal(t, catalog.CopyStatusAvailable, issuance.PreviousStatus)
	assert.Equal(t, int64(3), issuance.Borrow.BookCopyID)
	assert.Equal(t, int64(5), issuance.Borrow.UserID)
	require.NotNil(t, issuance.Borrow.BookID)
	assert.Equal(t, int64(1), *issuance.Borrow.BookID)
	assert.Equal(t, catalog.BorrowStatusActive, issuance.Borrow.Status)
	assert.Equal(t, "2024-03-01", issuance.Borrow.IssuedOn.String())
	assert.Equal(t, "2024-03-08", issuance.Borrow.DueOn.String())
}

func Test_Decide_DefaultsLoanPeriod(t *testing.T) {
	testCases := []struct {
		name          string
		requestedDays int
		expectedDueOn string
	}{
		{name: "absent", requestedDays: 0, expectedDueOn: "2024-03-15"},
		{name: "negative", requestedDays: -3, expectedDueOn: "2024-03-15"},
		{name: "explicit", requestedDays: 1, expectedDueOn: "2024-03-02"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			command := issuebookcopy.BuildCommand(id(1), id(5), tc.requestedDays, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
			candidate := &catalog.BookCopy{ID: 3, BookID: 1, Status: catalog.CopyStatusAvailable}

			// act
			decision := issuebookcopy.Decide(candidate, command, core.DefaultLoanPolicy())

			// assert
			require.NoError(t, decision.HasError())
			assert.Equal(t, tc.expectedDueOn, decision.Change.Borrow.DueOn.String())
		})
	}
}

func Test_Decide_Error_NoAvailableCopy(t *testing.T) {
	// arrange
	command := issuebookcopy.BuildCommand(id(1), id(5), 0, time.Now())

	// act
	decision := issuebookcopy.Decide(nil, command, core.DefaultLoanPolicy())

	// assert
	err := decision.HasError()
	require.Error(t, err)
	assert.Equal(t, catalog.KindConflict, catalog.KindOf(err))
	assert.Equal(t, "No available copy", catalog.MessageOf(err, ""))
	assert.False(t, decision.HasChangeToPersist())
}

func Test_Command_Validate(t *testing.T) {
	testCases := []struct {
		name            string
		command         issuebookcopy.Command
		expectedMessage string
	}{
		{name: "missing book id", command: issuebookcopy.BuildCommand(nil, id(5), 0, time.Now()), expectedMessage: "bookId required"},
		{name: "missing user id", command: issuebookcopy.BuildCommand(id(1), nil, 0, time.Now()), expectedMessage: "userId required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := tc.command.Validate()

			// assert
			require.Error(t, err)
			assert.Equal(t, catalog.KindValidation, catalog.KindOf(err))
			assert.Equal(t, tc.expectedMessage, catalog.MessageOf(err, ""))
		})
	}
}

func Test_Command_Validate_ZeroIDsArePresent(t *testing.T) {
	// act
	err := issuebookcopy.BuildCommand(id(0), id(0), 0, time.Now()).Validate()

	// assert
	assert.NoError(t, err)
}

func id(v int64) *int64 {
	return &v
}
