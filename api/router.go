package api

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/features/command/issuebookcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/issuespecificcopy"
	"github.com/AntonStoeckl/library-catalog/features/command/returnbookcopy"
	"github.com/AntonStoeckl/library-catalog/features/query/bookavailability"
	"github.com/AntonStoeckl/library-catalog/features/query/borrowhistory"
	"github.com/AntonStoeckl/library-catalog/shared/shell"
	"github.com/AntonStoeckl/library-catalog/userservice"
)

const basePath = "/api/catalog"

var (
	// ErrNilStore is returned by NewRouter if Dependencies.Store is nil.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilHandler is returned by NewRouter if a workflow handler is missing.
	ErrNilHandler = errors.New("workflow handlers must not be nil")
)

// UserFinder is the user-service port of the integration endpoint.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (userservice.User, error)
}

// Dependencies are the collaborators of the HTTP handlers.
type Dependencies struct {
	Store             catalog.Store
	IssueBookCopy     shell.CommandHandler[issuebookcopy.Command, issuebookcopy.Result]
	IssueSpecificCopy shell.CommandHandler[issuespecificcopy.Command, issuespecificcopy.Result]
	ReturnBookCopy    shell.CommandHandler[returnbookcopy.Command, returnbookcopy.Result]
	BorrowHistory     shell.QueryHandler[borrowhistory.Query, borrowhistory.BorrowHistory]
	BookAvailability  shell.QueryHandler[bookavailability.Query, bookavailability.Availability]
	Users             UserFinder
}

type server struct {
	deps               Dependencies
	logger             catalog.ContextualLogger
	now                func() time.Time
	exposeErrorDetails bool
	corsAllowedOrigin  string
}

// Option defines a functional option for configuring the router.
type Option func(*server) error

// WithContextualLogger sets the logger for request and error logs.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(s *server) error {
		s.logger = logger
		return nil
	}
}

// WithClock sets the source of "today" for issue and return dates.
func WithClock(now func() time.Time) Option {
	return func(s *server) error {
		s.now = now
		return nil
	}
}

// WithExposeErrorDetails adds the error text of unexpected errors to 500 responses.
func WithExposeErrorDetails(expose bool) Option {
	return func(s *server) error {
		s.exposeErrorDetails = expose
		return nil
	}
}

// WithCORSAllowedOrigin sets the Access-Control-Allow-Origin header, "*" by default.
func WithCORSAllowedOrigin(origin string) Option {
	return func(s *server) error {
		s.corsAllowedOrigin = origin
		return nil
	}
}

// NewRouter builds the gin engine with all routes and middleware.
// The user-service endpoint answers 503 if Dependencies.Users is nil.
func NewRouter(deps Dependencies, options ...Option) (*gin.Engine, error) {
	if deps.Store == nil {
		return nil, ErrNilStore
	}

	if deps.IssueBookCopy == nil || deps.IssueSpecificCopy == nil || deps.ReturnBookCopy == nil ||
		deps.BorrowHistory == nil || deps.BookAvailability == nil {
		return nil, ErrNilHandler
	}

	s := &server{
		deps:              deps,
		now:               time.Now,
		corsAllowedOrigin: "*",
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	router := gin.New()
	router.Use(s.recovery(), requestID(), cors(s.corsAllowedOrigin), s.requestLogger())

	router.GET("/health", s.health)

	catalogGroup := router.Group(basePath)

	books := catalogGroup.Group("/books")
	{
		books.GET("", s.listBooks)
		books.GET("/search", s.searchBooks)
		books.GET("/category/:name", s.booksByCategory)
		books.GET("/:id", s.getBook)
		books.GET("/:id/availability", s.bookAvailability)
		books.POST("", s.createBook)
		books.PUT("/:id", s.updateBook)
		books.DELETE("/:id", s.deleteBook)
	}

	copies := catalogGroup.Group("/copies")
	{
		copies.GET("", s.listCopies)
		copies.GET("/book/:bookId", s.copiesByBook)
		copies.GET("/status/:status", s.copiesByStatus)
		copies.GET("/:id", s.getCopy)
		copies.POST("", s.createCopy)
		copies.PUT("/:id", s.updateCopy)
		copies.DELETE("/:id", s.deleteCopy)
	}

	catalogGroup.POST("/borrow/book", s.borrowByBook)
	catalogGroup.POST("/borrow", s.borrowSpecific)
	catalogGroup.POST("/return", s.returnCopy)
	catalogGroup.GET("/borrows/user/:userId", s.borrowHistory)
	catalogGroup.GET("/integration/user/:id", s.integrationUser)

	return router, nil
}
