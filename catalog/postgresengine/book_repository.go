package postgresengine

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine/internal/adapters"
)

const (
	opFindAllBooks        = "find_all_books"
	opFindBookByID        = "find_book_by_id"
	opSearchBooksByTitle  = "search_books_by_title"
	opFindBooksByCategory = "find_books_by_category"
	opInsertBook          = "insert_book"
	opUpdateBook          = "update_book"
	opDeleteBook          = "delete_book"
	colBookID             = "book_id"
)

// PostgreSQL uses the backslash as the default LIKE escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type bookRepository struct {
	executor
}

func (r bookRepository) FindAll(ctx context.Context) ([]catalog.Book, error) {
	return r.findBooks(ctx, opFindAllBooks, bookSelect())
}

func (r bookRepository) FindByID(ctx context.Context, id int64) (catalog.Book, error) {
	books, err := r.findBooks(ctx, opFindBookByID, bookSelect().Where(goqu.I("b.book_id").Eq(id)))
	if err != nil {
		return catalog.Book{}, err
	}

	if len(books) == 0 {
		return catalog.Book{}, catalog.ErrRecordNotFound
	}

	return books[0], nil
}

func (r bookRepository) SearchByTitle(ctx context.Context, fragment string) ([]catalog.Book, error) {
	ds := bookSelect().Where(titleContains(fragment))

	return r.findBooks(ctx, opSearchBooksByTitle, ds)
}

func (r bookRepository) FindByCategoryName(ctx context.Context, name string) ([]catalog.Book, error) {
	ds := bookSelect().Where(goqu.Func("LOWER", goqu.I("c.name")).Eq(strings.ToLower(name)))

	return r.findBooks(ctx, opFindBooksByCategory, ds)
}

func (r bookRepository) Save(ctx context.Context, book catalog.Book) (catalog.Book, error) {
	record := bookRecord(book)

	if book.ID == 0 {
		var newID int64
		ds := dialect.Insert(tableBooks).Rows(record).Returning(colBookID).Prepared(true)

		if _, err := r.query(ctx, opInsertBook, ds, func(rows adapters.DBRows) error {
			return rows.Scan(&newID)
		}); err != nil {
			return catalog.Book{}, err
		}

		return r.FindByID(ctx, newID)
	}

	ds := dialect.Update(tableBooks).Set(record).Where(goqu.C(colBookID).Eq(book.ID)).Prepared(true)

	rowsAffected, err := r.exec(ctx, opUpdateBook, ds)
	if err != nil {
		return catalog.Book{}, err
	}

	if rowsAffected == 0 {
		return catalog.Book{}, catalog.ErrRecordNotFound
	}

	return r.FindByID(ctx, book.ID)
}

func (r bookRepository) Delete(ctx context.Context, id int64) error {
	ds := dialect.Delete(tableBooks).Where(goqu.C(colBookID).Eq(id)).Prepared(true)

	_, err := r.exec(ctx, opDeleteBook, ds)

	return err
}

func (r bookRepository) findBooks(ctx context.Context, operation string, ds *goqu.SelectDataset) ([]catalog.Book, error) {
	books := make([]catalog.Book, 0)

	_, err := r.query(ctx, operation, ds, func(rows adapters.DBRows) error {
		book, scanErr := scanBook(rows)
		if scanErr != nil {
			return scanErr
		}

		books = append(books, book)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// bookSelect selects books with their optional author, publisher and category.
func bookSelect() *goqu.SelectDataset {
	return dialect.
		From(goqu.T(tableBooks).As("b")).
		Select(
			goqu.I("b.book_id"), goqu.I("b.title"), goqu.I("b.isbn"),
			goqu.I("b.publication_year"), goqu.I("b.shelf_location"),
			goqu.I("a.author_id"), goqu.I("a.first_name"), goqu.I("a.last_name"),
			goqu.I("p.publisher_id"), goqu.I("p.name"),
			goqu.I("c.category_id"), goqu.I("c.name"),
		).
		LeftJoin(goqu.T(tableAuthors).As("a"), goqu.On(goqu.I("a.author_id").Eq(goqu.I("b.author_id")))).
		LeftJoin(goqu.T(tablePublishers).As("p"), goqu.On(goqu.I("p.publisher_id").Eq(goqu.I("b.publisher_id")))).
		LeftJoin(goqu.T(tableCategories).As("c"), goqu.On(goqu.I("c.category_id").Eq(goqu.I("b.category_id")))).
		Order(goqu.I("b.book_id").Asc()).
		Prepared(true)
}

// titleContains matches the fragment literally, so % and _ typed by a user are no wildcards.
func titleContains(fragment string) exp.Expression {
	return goqu.I("b.title").ILike("%" + likeEscaper.Replace(fragment) + "%")
}

func bookRecord(book catalog.Book) goqu.Record {
	record := goqu.Record{
		"title":            book.Title,
		"isbn":             nullable(book.ISBN),
		"publication_year": nullable(book.PublicationYear),
		"shelf_location":   nullable(book.ShelfLocation),
		"author_id":        nil,
		"publisher_id":     nil,
		"category_id":      nil,
	}

	if book.Author != nil {
		record["author_id"] = book.Author.ID
	}

	if book.Publisher != nil {
		record["publisher_id"] = book.Publisher.ID
	}

	if book.Category != nil {
		record["category_id"] = book.Category.ID
	}

	return record
}

func scanBook(rows adapters.DBRows) (catalog.Book, error) {
	var (
		book                        catalog.Book
		publicationYear             *int32
		authorID                    *int64
		authorFirstName             *string
		authorLastName              *string
		publisherID, categoryID     *int64
		publisherName, categoryName *string
	)

	err := rows.Scan(
		&book.ID, &book.Title, &book.ISBN,
		&publicationYear, &book.ShelfLocation,
		&authorID, &authorFirstName, &authorLastName,
		&publisherID, &publisherName,
		&categoryID, &categoryName,
	)
	if err != nil {
		return catalog.Book{}, err
	}

	if publicationYear != nil {
		year := int(*publicationYear)
		book.PublicationYear = &year
	}

	if authorID != nil {
		book.Author = &catalog.Author{ID: *authorID, FirstName: deref(authorFirstName), LastName: authorLastName}
	}

	if publisherID != nil {
		book.Publisher = &catalog.Publisher{ID: *publisherID, Name: deref(publisherName)}
	}

	if categoryID != nil {
		book.Category = &catalog.Category{ID: *categoryID, Name: deref(categoryName)}
	}

	return book, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
