package postgresengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog"
	. "github.com/AntonStoeckl/library-catalog/testutil/postgres" //nolint:revive
)

func ptr[T any](v T) *T {
	return &v
}

func Test_BookRepository_Save_And_Find_WithReferences(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	CleanUp(t, wrapper)
	repos := wrapper.GetStore().Repositories()

	// arrange
	authorID := GivenAuthor(t, wrapper, "Ursula", "Le Guin")
	categoryID := GivenCategory(t, wrapper, "Science Fiction")

	// act
	saved, err := repos.Books.Save(ctx, catalog.Book{
		Title:           "The Dispossessed",
		ISBN:            ptr("978-0060512750"),
		Author:          &catalog.Author{ID: authorID},
		Category:        &catalog.Category{ID: categoryID},
		PublicationYear: ptr(1974),
	})

	// assert
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	require.NotNil(t, saved.Author)
	assert.Equal(t, "Ursula", saved.Author.FirstName)
	assert.Nil(t, saved.Publisher)
	require.NotNil(t, saved.Category)
	assert.Equal(t, "Science Fiction", saved.Category.Name)
	assert.Equal(t, 1974, *saved.PublicationYear)

	byTitle, err := repos.Books.SearchByTitle(ctx, "dispo")
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	byCategory, err := repos.Books.FindByCategoryName(ctx, "science FICTION")
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
}

func Test_BookRepository_UpdateUnknownID_ReturnsRecordNotFound(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	CleanUp(t, wrapper)

	// act
	_, err := wrapper.GetStore().Repositories().Books.Save(context.Background(), catalog.Book{ID: 4711, Title: "Ghost"})

	// assert
	assert.ErrorIs(t, err, catalog.ErrRecordNotFound)
}

func Test_CopyRepository_CompareAndSetStatus_DetectsConflict(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	CleanUp(t, wrapper)
	repos := wrapper.GetStore().Repositories()

	// arrange
	book, err := repos.Books.Save(ctx, catalog.Book{Title: "Dune"})
	require.NoError(t, err)
	bookCopy, err := repos.Copies.Save(ctx, catalog.BookCopy{BookID: book.ID, Status: "available"})
	require.NoError(t, err)

	// act
	firstErr := repos.Copies.CompareAndSetStatus(ctx, bookCopy.ID, catalog.CopyStatusAvailable, catalog.CopyStatusIssued)
	secondErr := repos.Copies.CompareAndSetStatus(ctx, bookCopy.ID, catalog.CopyStatusAvailable, catalog.CopyStatusIssued)

	// assert
	assert.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, catalog.ErrConcurrencyConflict)
}

func Test_WithinTx_ConcurrentIssuers_NeverShareACopy(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	CleanUp(t, wrapper)
	store := wrapper.GetStore()
	repos := store.Repositories()

	// arrange
	book, err := repos.Books.Save(ctx, catalog.Book{Title: "Neuromancer"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = repos.Copies.Save(ctx, catalog.BookCopy{BookID: book.ID, Status: catalog.CopyStatusAvailable})
		require.NoError(t, err)
	}

	// act
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued = make(map[int64]int)
	)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_ = store.WithinTx(ctx, func(ctx context.Context, repos catalog.Repositories) error {
				bookCopy, findErr := repos.Copies.FindFirstAvailableByBookID(ctx, book.ID)
				if findErr != nil {
					return findErr
				}

				if casErr := repos.Copies.CompareAndSetStatus(ctx, bookCopy.ID, catalog.CopyStatusAvailable, catalog.CopyStatusIssued); casErr != nil {
					return casErr
				}

				mu.Lock()
				issued[bookCopy.ID]++
				mu.Unlock()

				return nil
			})
		}()
	}
	wg.Wait()

	// assert
	assert.Len(t, issued, 3)
	for copyID, count := range issued {
		assert.Equal(t, 1, count, "copy %d issued more than once", copyID)
	}
}

func Test_BorrowRepository_RoundTrip_And_UserOrdering(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	CleanUp(t, wrapper)
	repos := wrapper.GetStore().Repositories()

	// arrange
	older, err := repos.Borrows.Save(ctx, catalog.Borrow{
		UserID: 42, BookCopyID: 1, BookID: ptr(int64(1)),
		IssuedOn: catalog.NewDate(2024, time.January, 1), DueOn: catalog.NewDate(2024, time.January, 15),
		Status: catalog.BorrowStatusActive,
	})
	require.NoError(t, err)

	newer, err := repos.Borrows.Save(ctx, catalog.Borrow{
		UserID: 42, BookCopyID: 2,
		IssuedOn: catalog.NewDate(2024, time.March, 1), DueOn: catalog.NewDate(2024, time.March, 15),
		Status: catalog.BorrowStatusActive,
	})
	require.NoError(t, err)

	returnedOn := catalog.NewDate(2024, time.January, 10)
	older.ReturnedOn = &returnedOn
	older.Status = catalog.BorrowStatusReturned
	_, err = repos.Borrows.Save(ctx, older)
	require.NoError(t, err)

	// act
	history, err := repos.Borrows.FindByUserID(ctx, 42)

	// assert
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer.BorrowID, history[0].BorrowID)
	assert.Nil(t, history[0].BookID)
	assert.Equal(t, older.BorrowID, history[1].BorrowID)
	assert.Equal(t, catalog.BorrowStatusReturned, history[1].Status)
	require.NotNil(t, history[1].ReturnedOn)
	assert.Equal(t, "2024-01-10", history[1].ReturnedOn.String())
	assert.Equal(t, "2024-01-15", history[1].DueOn.String())
}
