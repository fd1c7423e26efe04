package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
)

func Test_LoanPolicy_LoanDays(t *testing.T) {
	testCases := []struct {
		name      string
		policy    core.LoanPolicy
		requested int
		expected  int
	}{
		{name: "requested days are used when positive", policy: core.DefaultLoanPolicy(), requested: 7, expected: 7},
		{name: "absent days fall back to the default", policy: core.DefaultLoanPolicy(), requested: 0, expected: 14},
		{name: "negative days fall back to the default", policy: core.DefaultLoanPolicy(), requested: -3, expected: 14},
		{name: "configured default is used", policy: core.LoanPolicy{DefaultDays: 21}, requested: 0, expected: 21},
		{name: "zero policy uses the built-in default", policy: core.LoanPolicy{}, requested: 0, expected: 14},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			days := tc.policy.LoanDays(tc.requested)

			// assert
			assert.Equal(t, tc.expected, days)
		})
	}
}

func Test_LoanPolicy_DueOn_CrossesMonthEnd(t *testing.T) {
	// arrange
	issuedOn := catalog.NewDate(2024, time.January, 25)

	// act
	dueOn := core.DefaultLoanPolicy().DueOn(issuedOn, 0)

	// assert
	assert.Equal(t, "2024-02-08", dueOn.String())
}

func Test_BuildIssuance(t *testing.T) {
	// arrange
	bookID := int64(3)
	bookCopy := catalog.BookCopy{ID: 11, BookID: bookID, Status: "available"}
	issuedOn := catalog.NewDate(2024, time.March, 1)

	// act
	issuance := core.BuildIssuance(bookCopy, &bookID, 42, issuedOn, 10)

	// assert
	assert.Equal(t, catalog.CopyStatusIssued, issuance.Copy.Status)
	assert.Equal(t, catalog.CopyStatus("available"), issuance.PreviousStatus)
	assert.Equal(t, int64(42), issuance.Borrow.UserID)
	assert.Equal(t, int64(11), issuance.Borrow.BookCopyID)
	assert.Equal(t, &bookID, issuance.Borrow.BookID)
	assert.Equal(t, catalog.BorrowStatusActive, issuance.Borrow.Status)
	assert.Equal(t, "2024-03-11", issuance.Borrow.DueOn.String())
	assert.Nil(t, issuance.Borrow.ReturnedOn)
	assert.Zero(t, issuance.Borrow.BorrowID)
}

func Test_BuildRestitution(t *testing.T) {
	returnedOn := catalog.NewDate(2024, time.April, 2)

	t.Run("closes the borrow and frees the copy", func(t *testing.T) {
		// arrange
		borrow := &catalog.Borrow{BorrowID: 5, BookCopyID: 11, Status: catalog.BorrowStatusActive}
		bookCopy := &catalog.BookCopy{ID: 11, Status: catalog.CopyStatusIssued}

		// act
		restitution := core.BuildRestitution(borrow, bookCopy, returnedOn)

		// assert
		assert.True(t, restitution.FoundBorrow())
		assert.Equal(t, catalog.BorrowStatusReturned, restitution.Borrow.Status)
		assert.Equal(t, returnedOn, *restitution.Borrow.ReturnedOn)
		assert.Equal(t, catalog.CopyStatusAvailable, restitution.Copy.Status)
		assert.Equal(t, catalog.CopyStatusIssued, restitution.PreviousCopyStatus)
		assert.Equal(t, catalog.BorrowStatusActive, borrow.Status, "input must not be modified")
		assert.Equal(t, catalog.CopyStatusIssued, bookCopy.Status, "input must not be modified")
	})

	t.Run("without a borrow only the copy is freed", func(t *testing.T) {
		// act
		restitution := core.BuildRestitution(nil, &catalog.BookCopy{ID: 11, Status: catalog.CopyStatusLost}, returnedOn)

		// assert
		assert.False(t, restitution.FoundBorrow())
		assert.Equal(t, catalog.CopyStatusAvailable, restitution.Copy.Status)
	})
}

func Test_DecisionResult(t *testing.T) {
	// act
	idempotent := core.IdempotentDecision[core.Issuance]()
	success := core.SuccessDecision(core.Issuance{})
	failure := core.ErrorDecision[core.Issuance](catalog.Conflict("Not available"))

	// assert
	assert.True(t, idempotent.IsIdempotent())
	assert.False(t, idempotent.HasChangeToPersist())
	assert.NoError(t, idempotent.HasError())

	assert.True(t, success.HasChangeToPersist())
	assert.NoError(t, success.HasError())

	assert.False(t, failure.HasChangeToPersist())
	assert.EqualError(t, failure.HasError(), "Not available")
}
