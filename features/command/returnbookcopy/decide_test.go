package returnbookcopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/returnbookcopy"
)

var returnDay = time.Date(2024, time.April, 2, 18, 0, 0, 0, time.UTC)

func Test_Decide_ClosesBorrowAndFreesCopyInHand(t *testing.T) {
	// arrange
	command := returnbookcopy.BuildCommand(id(3), nil, returnDay)
	s := returnbookcopy.State{
		RequestedCopy: &catalog.BookCopy{ID: 3, BookID: 1, Status: catalog.CopyStatusIssued},
		ActiveBorrow:  &catalog.Borrow{BorrowID: 8, BookCopyID: 3, Status: catalog.BorrowStatusActive},
	}

	// act
	decision := returnbookcopy.Decide(s, command)

	// assert
	require.NoError(t, decision.HasError())
	require.True(t, decision.HasChangeToPersist())

	change := decision.Change
	require.NotNil(t, change.Borrow)
	assert.Equal(t, catalog.BorrowStatusReturned, change.Borrow.Status)
	require.NotNil(t, change.Borrow.ReturnedOn)
	assert.Equal(t, "2024-04-02", change.Borrow.ReturnedOn.String())
	require.NotNil(t, change.Copy)
	assert.Equal(t, int64(3), change.Copy.ID)
	assert.Equal(t, catalog.CopyStatusAvailable, change.Copy.Status)
	assert.Equal(t, catalog.CopyStatusIssued, change.PreviousCopyStatus)
}

func Test_Decide_FreesBorrowedCopyWhenNoCopyWasNamed(t *testing.T) {
	// arrange
	command := returnbookcopy.BuildCommand(nil, id(8), returnDay)
	s := returnbookcopy.State{
		ActiveBorrow: &catalog.Borrow{BorrowID: 8, BookCopyID: 3, Status: catalog.BorrowStatusActive},
		BorrowedCopy: &catalog.BookCopy{ID: 3, BookID: 1, Status: catalog.CopyStatusIssued},
	}

	// act
	decision := returnbookcopy.Decide(s, command)

	// assert
	require.True(t, decision.HasChangeToPersist())
	require.NotNil(t, decision.Change.Copy)
	assert.Equal(t, int64(3), decision.Change.Copy.ID)
}

func Test_Decide_ClosesBorrowEvenIfItsCopyIsGone(t *testing.T) {
	// arrange
	command := returnbookcopy.BuildCommand(nil, id(8), returnDay)
	s := returnbookcopy.State{
		ActiveBorrow: &catalog.Borrow{BorrowID: 8, BookCopyID: 3, Status: catalog.BorrowStatusActive},
	}

	// act
	decision := returnbookcopy.Decide(s, command)

	// assert
	require.True(t, decision.HasChangeToPersist())
	assert.NotNil(t, decision.Change.Borrow)
	assert.Nil(t, decision.Change.Copy)
}

func Test_Decide_RecoversCopyWithoutBorrow(t *testing.T) {
	// arrange
	command := returnbookcopy.BuildCommand(id(3), nil, returnDay)
	s := returnbookcopy.State{
		RequestedCopy: &catalog.BookCopy{ID: 3, BookID: 1, Status: catalog.CopyStatusIssued},
	}

	// act
	decision := returnbookcopy.Decide(s, command)

	// assert
	require.True(t, decision.HasChangeToPersist())
	assert.False(t, decision.Change.FoundBorrow())
	require.NotNil(t, decision.Change.Copy)
	assert.Equal(t, catalog.CopyStatusAvailable, decision.Change.Copy.Status)
}

func Test_Decide_Idempotent(t *testing.T) {
	testCases := []struct {
		name    string
		command returnbookcopy.Command
		state   returnbookcopy.State
	}{
		{
			name:    "borrow already returned, no copy named",
			command: returnbookcopy.BuildCommand(nil, id(8), returnDay),
			state:   returnbookcopy.State{},
		},
		{
			name:    "copy already available",
			command: returnbookcopy.BuildCommand(id(3), nil, returnDay),
			state: returnbookcopy.State{
				RequestedCopy: &catalog.BookCopy{ID: 3, Status: catalog.CopyStatusAvailable},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			decision := returnbookcopy.Decide(tc.state, tc.command)

			// assert
			assert.NoError(t, decision.HasError())
			assert.True(t, decision.IsIdempotent())
			assert.False(t, decision.HasChangeToPersist())
		})
	}
}

func Test_Decide_Error_CopyNotFound(t *testing.T) {
	// arrange
	command := returnbookcopy.BuildCommand(id(3), id(8), returnDay)
	s := returnbookcopy.State{
		ActiveBorrow: &catalog.Borrow{BorrowID: 8, BookCopyID: 3, Status: catalog.BorrowStatusActive},
	}

	// act
	decision := returnbookcopy.Decide(s, command)

	// assert
	err := decision.HasError()
	require.Error(t, err)
	assert.Equal(t, catalog.KindNotFound, catalog.KindOf(err))
	assert.Equal(t, "Copy not found", catalog.MessageOf(err, ""))
}

func Test_Command_Validate(t *testing.T) {
	// act
	err := returnbookcopy.BuildCommand(nil, nil, returnDay).Validate()

	// assert
	require.Error(t, err)
	assert.Equal(t, catalog.KindValidation, catalog.KindOf(err))
	assert.Equal(t, "bookCopyId or borrowId required", catalog.MessageOf(err, ""))
}

func Test_Command_Validate_ZeroCopyIDIsPresent(t *testing.T) {
	// act
	err := returnbookcopy.BuildCommand(id(0), nil, returnDay).Validate()

	// assert
	assert.NoError(t, err)
}

func id(v int64) *int64 {
	return &v
}
