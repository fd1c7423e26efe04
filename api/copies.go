package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

func (s *server) listCopies(c *gin.Context) {
	copies, err := s.deps.Store.Repositories().Copies.FindAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, copies)
}

func (s *server) getCopy(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	bookCopy, err := s.deps.Store.Repositories().Copies.FindByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, notFoundAs(err, "Copy not found"))
		return
	}

	s.writeJSON(c, http.StatusOK, bookCopy)
}

func (s *server) copiesByBook(c *gin.Context) {
	bookID, ok := s.pathID(c, "bookId")
	if !ok {
		return
	}

	copies, err := s.deps.Store.Repositories().Copies.FindByBookID(c.Request.Context(), bookID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, copies)
}

func (s *server) copiesByStatus(c *gin.Context) {
	status := catalog.NormalizeCopyStatus(c.Param("status"))

	copies, err := s.deps.Store.Repositories().Copies.FindByStatus(c.Request.Context(), status)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, copies)
}

func (s *server) createCopy(c *gin.Context) {
	bookCopy, ok := s.bindCopy(c)
	if !ok {
		return
	}

	saved, err := s.deps.Store.Repositories().Copies.Save(c.Request.Context(), bookCopy)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, saved)
}

func (s *server) updateCopy(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	bookCopy, ok := s.bindCopy(c)
	if !ok {
		return
	}

	bookCopy.ID = id

	saved, err := s.deps.Store.Repositories().Copies.Save(c.Request.Context(), bookCopy)
	if err != nil {
		s.writeError(c, notFoundAs(err, "Copy not found"))
		return
	}

	s.writeJSON(c, http.StatusOK, saved)
}

func (s *server) deleteCopy(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	if err := s.deps.Store.Repositories().Copies.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindCopy accepts the book as "bookId" or as a nested {"book": {"id": ...}} object.
// The status is upper-cased and defaults to AVAILABLE.
func (s *server) bindCopy(c *gin.Context) (catalog.BookCopy, bool) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, catalog.ErrInvalidRequestBody)
		return catalog.BookCopy{}, false
	}

	p, err := parsePayload(body)
	if err != nil {
		s.writeError(c, err)
		return catalog.BookCopy{}, false
	}

	bookID, ok := p.int("bookId")
	if !ok {
		bookID, ok = coerceInt(p.root.Get("book", "id"))
	}

	if !ok || bookID == 0 {
		s.writeError(c, catalog.Validation("bookId required"))
		return catalog.BookCopy{}, false
	}

	bookCopy := catalog.BookCopy{
		BookID: bookID,
		Status: catalog.CopyStatusAvailable,
	}

	if barcode := p.root.Get("barcode"); barcode.ValueType() == jsoniter.StringValue {
		value := barcode.ToString()
		bookCopy.Barcode = &value
	}

	if status := p.root.Get("status"); status.ValueType() == jsoniter.StringValue && status.ToString() != "" {
		bookCopy.Status = catalog.NormalizeCopyStatus(status.ToString())
	}

	return bookCopy, true
}
