package fakes

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

// MemoryStore is an in-memory catalog.Store.
// WithinTx works on a copy of the state which is committed only if the TxFunc succeeds,
// so it has the same all-or-nothing semantics as the PostgreSQL store.
type MemoryStore struct {
	txMu              sync.Mutex
	mu                sync.Mutex
	state             *memoryState
	pendingConflicts  int
	failOnBorrowSave  error
	committedTxCount  int
	rolledBackTxCount int
}

type memoryState struct {
	books        map[int64]catalog.Book
	copies       map[int64]catalog.BookCopy
	borrows      map[int64]catalog.Borrow
	nextBookID   int64
	nextCopyID   int64
	nextBorrowID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func newMemoryState() *memoryState {
	return &memoryState{
		books:   make(map[int64]catalog.Book),
		copies:  make(map[int64]catalog.BookCopy),
		borrows: make(map[int64]catalog.Borrow),
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		books:        make(map[int64]catalog.Book, len(s.books)),
		copies:       make(map[int64]catalog.BookCopy, len(s.copies)),
		borrows:      make(map[int64]catalog.Borrow, len(s.borrows)),
		nextBookID:   s.nextBookID,
		nextCopyID:   s.nextCopyID,
		nextBorrowID: s.nextBorrowID,
	}

	for id, b := range s.books {
		c.books[id] = b
	}

	for id, bc := range s.copies {
		c.copies[id] = bc
	}

	for id, b := range s.borrows {
		c.borrows[id] = b
	}

	return c
}

// InjectConflicts makes the next n CompareAndSetStatus calls fail with catalog.ErrConcurrencyConflict.
func (s *MemoryStore) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingConflicts = n
}

// FailBorrowSaves makes every BorrowRepository.Save fail with err (nil to reset).
func (s *MemoryStore) FailBorrowSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failOnBorrowSave = err
}

// CommittedTxCount returns how many WithinTx calls were committed.
func (s *MemoryStore) CommittedTxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committedTxCount
}

// RolledBackTxCount returns how many WithinTx calls were rolled back.
func (s *MemoryStore) RolledBackTxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rolledBackTxCount
}

// Repositories returns repositories which write straight into the committed state.
func (s *MemoryStore) Repositories() catalog.Repositories {
	return s.repositoriesFor(func() *memoryState { return s.state })
}

// WithinTx runs fn against a private copy of the state. The copy replaces the state when fn succeeds.
// Transactions are serialized.
func (s *MemoryStore) WithinTx(ctx context.Context, fn catalog.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	working := s.state.clone()
	s.mu.Unlock()

	err := fn(ctx, s.repositoriesFor(func() *memoryState { return working }))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.rolledBackTxCount++
		return err
	}

	s.state = working
	s.committedTxCount++

	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// SeedBook stores book (assigning an id if it has none) and returns it.
func (s *MemoryStore) SeedBook(book catalog.Book) catalog.Book {
	saved, _ := s.Repositories().Books.Save(context.Background(), book)
	return saved
}

// SeedCopy stores bookCopy (assigning an id if it has none) and returns it.
func (s *MemoryStore) SeedCopy(bookCopy catalog.BookCopy) catalog.BookCopy {
	if bookCopy.ID != 0 {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.state.copies[bookCopy.ID] = bookCopy
		s.state.nextCopyID = max(s.state.nextCopyID, bookCopy.ID)

		return bookCopy
	}

	saved, _ := s.Repositories().Copies.Save(context.Background(), bookCopy)

	return saved
}

// SeedBorrow stores borrow (assigning an id if it has none) and returns it.
func (s *MemoryStore) SeedBorrow(borrow catalog.Borrow) catalog.Borrow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if borrow.BorrowID == 0 {
		s.state.nextBorrowID++
		borrow.BorrowID = s.state.nextBorrowID
	} else {
		s.state.nextBorrowID = max(s.state.nextBorrowID, borrow.BorrowID)
	}

	s.state.borrows[borrow.BorrowID] = borrow

	return borrow
}

// Copy returns the committed copy with the id.
func (s *MemoryStore) Copy(id int64) (catalog.BookCopy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bc, ok := s.state.copies[id]

	return bc, ok
}

// Borrow returns the committed borrow with the id.
func (s *MemoryStore) Borrow(id int64) (catalog.Borrow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.state.borrows[id]

	return b, ok
}

// Borrows returns all committed borrows ordered by id.
func (s *MemoryStore) Borrows() []catalog.Borrow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedValues(s.state.borrows, func(b catalog.Borrow) int64 { return b.BorrowID })
}

func (s *MemoryStore) repositoriesFor(current func() *memoryState) catalog.Repositories {
	return catalog.Repositories{
		Books:   memoryBooks{store: s, current: current},
		Copies:  memoryCopies{store: s, current: current},
		Borrows: memoryBorrows{store: s, current: current},
	}
}

// locked runs fn under the store mutex. Working copies of a transaction are guarded by it as well.
func (s *MemoryStore) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn()
}

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	values := make([]T, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}

	slices.SortFunc(values, func(a, b T) int {
		return compareInt64(id(a), id(b))
	})

	return values
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type memoryBooks struct {
	store   *MemoryStore
	current func() *memoryState
}

func (r memoryBooks) FindAll(ctx context.Context) ([]catalog.Book, error) {
	return r.filter(ctx, func(catalog.Book) bool { return true })
}

func (r memoryBooks) FindByID(ctx context.Context, id int64) (catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Book{}, err
	}

	var (
		book catalog.Book
		ok   bool
	)

	r.store.locked(func() { book, ok = r.current().books[id] })

	if !ok {
		return catalog.Book{}, catalog.ErrRecordNotFound
	}

	return book, nil
}

func (r memoryBooks) SearchByTitle(ctx context.Context, fragment string) ([]catalog.Book, error) {
	needle := strings.ToLower(fragment)

	return r.filter(ctx, func(b catalog.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	})
}

func (r memoryBooks) FindByCategoryName(ctx context.Context, name string) ([]catalog.Book, error) {
	return r.filter(ctx, func(b catalog.Book) bool {
		return b.Category != nil && strings.EqualFold(b.Category.Name, name)
	})
}

func (r memoryBooks) Save(ctx context.Context, book catalog.Book) (catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Book{}, err
	}

	var err error

	r.store.locked(func() {
		state := r.current()

		if book.ID == 0 {
			state.nextBookID++
			book.ID = state.nextBookID
		} else if _, ok := state.books[book.ID]; !ok {
			err = catalog.ErrRecordNotFound
			return
		}

		state.books[book.ID] = book
	})

	if err != nil {
		return catalog.Book{}, err
	}

	return book, nil
}

func (r memoryBooks) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.locked(func() { delete(r.current().books, id) })

	return nil
}

func (r memoryBooks) filter(ctx context.Context, keep func(catalog.Book) bool) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []catalog.Book

	r.store.locked(func() {
		books = sortedValues(r.current().books, func(b catalog.Book) int64 { return b.ID })
	})

	return slices.DeleteFunc(books, func(b catalog.Book) bool { return !keep(b) }), nil
}

type memoryCopies struct {
	store   *MemoryStore
	current func() *memoryState
}

func (r memoryCopies) FindAll(ctx context.Context) ([]catalog.BookCopy, error) {
	return r.filter(ctx, func(catalog.BookCopy) bool { return true })
}

func (r memoryCopies) FindByID(ctx context.Context, id int64) (catalog.BookCopy, error) {
	if err := ctx.Err(); err != nil {
		return catalog.BookCopy{}, err
	}

	var (
		bookCopy catalog.BookCopy
		ok       bool
	)

	r.store.locked(func() { bookCopy, ok = r.current().copies[id] })

	if !ok {
		return catalog.BookCopy{}, catalog.ErrRecordNotFound
	}

	return bookCopy, nil
}

func (r memoryCopies) FindByBookID(ctx context.Context, bookID int64) ([]catalog.BookCopy, error) {
	return r.filter(ctx, func(bc catalog.BookCopy) bool { return bc.BookID == bookID })
}

func (r memoryCopies) FindByStatus(ctx context.Context, status catalog.CopyStatus) ([]catalog.BookCopy, error) {
	return r.filter(ctx, func(bc catalog.BookCopy) bool { return bc.Status == status })
}

func (r memoryCopies) FindFirstAvailableByBookID(ctx context.Context, bookID int64) (catalog.BookCopy, error) {
	copies, err := r.filter(ctx, func(bc catalog.BookCopy) bool {
		return bc.BookID == bookID && bc.Status.IsAvailable()
	})
	if err != nil {
		return catalog.BookCopy{}, err
	}

	if len(copies) == 0 {
		return catalog.BookCopy{}, catalog.ErrRecordNotFound
	}

	return copies[0], nil
}

func (r memoryCopies) Save(ctx context.Context, bookCopy catalog.BookCopy) (catalog.BookCopy, error) {
	if err := ctx.Err(); err != nil {
		return catalog.BookCopy{}, err
	}

	var err error

	r.store.locked(func() {
		state := r.current()

		if bookCopy.ID == 0 {
			state.nextCopyID++
			bookCopy.ID = state.nextCopyID
		} else if _, ok := state.copies[bookCopy.ID]; !ok {
			err = catalog.ErrRecordNotFound
			return
		}

		state.copies[bookCopy.ID] = bookCopy
	})

	if err != nil {
		return catalog.BookCopy{}, err
	}

	return bookCopy, nil
}

func (r memoryCopies) CompareAndSetStatus(
	ctx context.Context,
	id int64,
	expected catalog.CopyStatus,
	next catalog.CopyStatus,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error

	r.store.locked(func() {
		if r.store.pendingConflicts > 0 {
			r.store.pendingConflicts--
			err = catalog.ErrConcurrencyConflict

			return
		}

		state := r.current()

		bookCopy, ok := state.copies[id]
		if !ok || !strings.EqualFold(string(bookCopy.Status), string(expected)) {
			err = catalog.ErrConcurrencyConflict
			return
		}

		bookCopy.Status = next
		state.copies[id] = bookCopy
	})

	return err
}

func (r memoryCopies) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.locked(func() { delete(r.current().copies, id) })

	return nil
}

func (r memoryCopies) filter(ctx context.Context, keep func(catalog.BookCopy) bool) ([]catalog.BookCopy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var copies []catalog.BookCopy

	r.store.locked(func() {
		copies = sortedValues(r.current().copies, func(bc catalog.BookCopy) int64 { return bc.ID })
	})

	return slices.DeleteFunc(copies, func(bc catalog.BookCopy) bool { return !keep(bc) }), nil
}

type memoryBorrows struct {
	store   *MemoryStore
	current func() *memoryState
}

func (r memoryBorrows) FindByID(ctx context.Context, id int64) (catalog.Borrow, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Borrow{}, err
	}

	var (
		borrow catalog.Borrow
		ok     bool
	)

	r.store.locked(func() { borrow, ok = r.current().borrows[id] })

	if !ok {
		return catalog.Borrow{}, catalog.ErrRecordNotFound
	}

	return borrow, nil
}

func (r memoryBorrows) FindByBookCopyID(ctx context.Context, bookCopyID int64) ([]catalog.Borrow, error) {
	return r.filter(ctx, func(b catalog.Borrow) bool { return b.BookCopyID == bookCopyID })
}

func (r memoryBorrows) FindByUserID(ctx context.Context, userID int64) ([]catalog.Borrow, error) {
	borrows, err := r.filter(ctx, func(b catalog.Borrow) bool { return b.UserID == userID })
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(borrows, func(a, b catalog.Borrow) int {
		if c := b.IssuedOn.Time().Compare(a.IssuedOn.Time()); c != 0 {
			return c
		}

		return compareInt64(b.BorrowID, a.BorrowID)
	})

	return borrows, nil
}

func (r memoryBorrows) Save(ctx context.Context, borrow catalog.Borrow) (catalog.Borrow, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Borrow{}, err
	}

	var err error

	r.store.locked(func() {
		if r.store.failOnBorrowSave != nil {
			err = r.store.failOnBorrowSave
			return
		}

		state := r.current()

		if borrow.BorrowID == 0 {
			state.nextBorrowID++
			borrow.BorrowID = state.nextBorrowID
		} else if _, ok := state.borrows[borrow.BorrowID]; !ok {
			err = catalog.ErrRecordNotFound
			return
		}

		state.borrows[borrow.BorrowID] = borrow
	})

	if err != nil {
		return catalog.Borrow{}, err
	}

	return borrow, nil
}

func (r memoryBorrows) filter(ctx context.Context, keep func(catalog.Borrow) bool) ([]catalog.Borrow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var borrows []catalog.Borrow

	r.store.locked(func() {
		borrows = sortedValues(r.current().borrows, func(b catalog.Borrow) int64 { return b.BorrowID })
	})

	return slices.DeleteFunc(borrows, func(b catalog.Borrow) bool { return !keep(b) }), nil
}
