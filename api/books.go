package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/query/bookavailability"
)

func (s *server) listBooks(c *gin.Context) {
	books, err := s.deps.Store.Repositories().Books.FindAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, books)
}

func (s *server) getBook(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	book, err := s.deps.Store.Repositories().Books.FindByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, notFoundAs(err, "Book not found"))
		return
	}

	s.writeJSON(c, http.StatusOK, book)
}

func (s *server) searchBooks(c *gin.Context) {
	books, err := s.deps.Store.Repositories().Books.SearchByTitle(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, books)
}

func (s *server) booksByCategory(c *gin.Context) {
	books, err := s.deps.Store.Repositories().Books.FindByCategoryName(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, books)
}

func (s *server) createBook(c *gin.Context) {
	book, ok := s.bindBook(c)
	if !ok {
		return
	}

	book.ID = 0

	saved, err := s.deps.Store.Repositories().Books.Save(c.Request.Context(), book)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, saved)
}

func (s *server) updateBook(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	book, ok := s.bindBook(c)
	if !ok {
		return
	}

	book.ID = id

	saved, err := s.deps.Store.Repositories().Books.Save(c.Request.Context(), book)
	if err != nil {
		s.writeError(c, notFoundAs(err, "Book not found"))
		return
	}

	s.writeJSON(c, http.StatusOK, saved)
}

func (s *server) deleteBook(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.deps.Store.Repositories().Books.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *server) bookAvailability(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	availability, err := s.deps.BookAvailability.Handle(c.Request.Context(), bookavailability.BuildQuery(id))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, availability)
}

func (s *server) bindBook(c *gin.Context) (catalog.Book, bool) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, catalog.ErrInvalidRequestBody)
		return catalog.Book{}, false
	}

	var book catalog.Book
	if err := json.Unmarshal(body, &book); err != nil {
		s.writeError(c, catalog.ErrInvalidRequestBody)
		return catalog.Book{}, false
	}

	if strings.TrimSpace(book.Title) == "" {
		s.writeError(c, catalog.Validation("title required"))
		return catalog.Book{}, false
	}

	// Empty ISBNs are stored as NULL, the column is unique.
	if book.ISBN != nil && strings.TrimSpace(*book.ISBN) == "" {
		book.ISBN = nil
	}

	return book, true
}

// pathID parses a numeric path parameter and answers 400 if it is not one.
func (s *server) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		s.writeError(c, catalog.Validation("invalid "+name))
		return 0, false
	}

	return id, true
}

// notFoundAs gives a repository miss a client-facing message.
func notFoundAs(err error, message string) error {
	if catalog.KindOf(err) == catalog.KindNotFound {
		return catalog.NotFound(message)
	}

	return err
}
