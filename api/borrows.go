package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuebookcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/issuespecificcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/returnbookcopy"
	"github.com/AntonStoeckl/library-catalog/features/query/borrowhistory"
)

const (
	statusIssued   = "issued"
	statusReturned = "returned"
)

// borrowByBook issues the first available copy of a book.
// Missing or unparsable ids stay nil and are refused by the command's validation.
func (s *server) borrowByBook(c *gin.Context) {
	p, ok := s.bindPayload(c)
	if !ok {
		return
	}

	days, _ := p.int("days")

	command := issuebookcopy.BuildCommand(optional(p.int("bookId")), optional(p.userID()), int(days), s.now())

	result, _, err := s.deps.IssueBookCopy.Handle(c.Request.Context(), command)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, gin.H{
		"status":     statusIssued,
		"bookCopyId": result.BookCopyID,
		"bookId":     result.BookID,
		"borrowId":   result.BorrowID,
		"issuedOn":   result.IssuedOn,
		"dueOn":      result.DueOn,
	})
}

// borrowSpecific issues the requested copy.
func (s *server) borrowSpecific(c *gin.Context) {
	p, ok := s.bindPayload(c)
	if !ok {
		return
	}

	days, _ := p.int("days")

	command := issuespecificcopy.BuildCommand(optional(p.int("bookCopyId")), optional(p.userID()), int(days), s.now())

	result, _, err := s.deps.IssueSpecificCopy.Handle(c.Request.Context(), command)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, gin.H{
		"status":     statusIssued,
		"bookCopyId": result.BookCopyID,
		"borrowId":   result.BorrowID,
		"issuedOn":   result.IssuedOn,
		"dueOn":      result.DueOn,
	})
}

func (s *server) returnCopy(c *gin.Context) {
	p, ok := s.bindPayload(c)
	if !ok {
		return
	}

	command := returnbookcopy.BuildCommand(optional(p.int("bookCopyId")), optional(p.int("borrowId")), s.now())

	result, _, err := s.deps.ReturnBookCopy.Handle(c.Request.Context(), command)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if !result.BorrowFound {
		s.writeJSON(c, http.StatusOK, gin.H{"status": statusReturned, "note": result.Note})
		return
	}

	s.writeJSON(c, http.StatusOK, gin.H{
		"status":     statusReturned,
		"borrowId":   result.BorrowID,
		"returnedOn": result.ReturnedOn,
	})
}

func (s *server) borrowHistory(c *gin.Context) {
	userID, ok := s.pathID(c, "userId")
	if !ok {
		return
	}

	history, err := s.deps.BorrowHistory.Handle(c.Request.Context(), borrowhistory.BuildQuery(userID))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.writeJSON(c, http.StatusOK, history.Borrows)
}

func (s *server) bindPayload(c *gin.Context) (payload, bool) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, catalog.ErrInvalidRequestBody)
		return payload{}, false
	}

	p, err := parsePayload(body)
	if err != nil {
		s.writeError(c, err)
		return payload{}, false
	}

	return p, true
}
