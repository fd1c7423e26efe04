package issuespecificcopy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuespecificcopy"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

func Test_Decide_IssuesRequestedCopy(t *testing.T) {
	// arrange
	command := issuespecificcopy.BuildCommand(id(9), id(5), 0, time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC))
	requested := &catalog.BookCopy{ID: 9, BookID: 4, Status: catalog.CopyStatusAvailable}

	// act
	decision := issuespecificcopy.Decide(requested, command, core.DefaultLoanPolicy())

	// assert
	require.NoError(t, decision.HasError())
	assert.Equal(t, catalog.CopyStatusIssued, decision.Change.Copy.Status)
	require.NotNil(t, decision.Change.Borrow.BookID)
	assert.Equal(t, int64(4), *decision.Change.Borrow.BookID)
	assert.Equal(t, "2024-06-13", decision.Change.Borrow.DueOn.String())
}

func Test_Decide_PropagatesMissingBookLinkAsNil(t *testing.T) {
	// arrange
	command := issuespecificcopy.BuildCommand(id(9), id(5), 3, time.Now())
	requested := &catalog.BookCopy{ID: 9, Status: catalog.CopyStatusAvailable}

	// act
	decision := issuespecificcopy.Decide(requested, command, core.DefaultLoanPolicy())

	// assert
	require.NoError(t, decision.HasError())
	assert.Nil(t, decision.Change.Borrow.BookID)
}

func Test_Decide_Errors(t *testing.T) {
	testCases := []struct {
		name            string
		requested       *catalog.BookCopy
		expectedKind    catalog.ErrorKind
		expectedMessage string
	}{
		{
			name:            "copy not found",
			requested:       nil,
			expectedKind:    catalog.KindNotFound,
			expectedMessage: "Copy not found",
		},
		{
			name:            "copy issued",
			requested:       &catalog.BookCopy{ID: 99, BookID: 1, Status: catalog.CopyStatusIssued},
			expectedKind:    catalog.KindConflict,
			expectedMessage: "Not available",
		},
		{
			name:            "copy damaged",
			requested:       &catalog.BookCopy{ID: 99, BookID: 1, Status: catalog.CopyStatusDamaged},
			expectedKind:    catalog.KindConflict,
			expectedMessage: "Not available",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			decision := issuespecificcopy.Decide(tc.requested, issuespecificcopy.BuildCommand(id(99), id(5), 0, time.Now()), core.DefaultLoanPolicy())

			// assert
			err := decision.HasError()
			require.Error(t, err)
			assert.Equal(t, tc.expectedKind, catalog.KindOf(err))
			assert.Equal(t, tc.expectedMessage, catalog.MessageOf(err, ""))
		})
	}
}

func id(v int64) *int64 {
	return &v
}
