package catalog

import (
	"errors"
)

var (
	// ErrRecordNotFound is returned by repositories when a lookup by id matches nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrConcurrencyConflict is returned when a conditional write matched no rows,
	// e.g. the copy was issued by a concurrent request between read and write.
	ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")

	// ErrNilDatabaseConnection is returned when a store is constructed with a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	ErrBuildingQueryFailed  = errors.New("building query failed")
	ErrQueryingFailed       = errors.New("querying failed")
	ErrExecFailed           = errors.New("executing statement failed")
	ErrScanningRowFailed    = errors.New("scanning row failed")
	ErrRowsAffectedFailed   = errors.New("reading rows affected failed")
	ErrBeginTxFailed        = errors.New("beginning transaction failed")
	ErrCommitTxFailed       = errors.New("committing transaction failed")
	ErrUniqueViolation      = errors.New("unique constraint violated")
	ErrForeignKeyViolation  = errors.New("foreign key constraint violated")
	ErrNotNullViolation     = errors.New("not null constraint violated")
	ErrUserServiceFailed    = errors.New("user service request failed")
	ErrInvalidRequestBody   = errors.New("invalid request body")
	ErrUnsupportedDBAdapter = errors.New("unsupported database adapter")
)

// ErrorKind is the closed set of failure categories the HTTP boundary maps to status codes.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error carries a client-facing message together with its kind and an optional cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a KindValidation error, e.g. "bookId required".
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound builds a KindNotFound error, e.g. "Copy not found".
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a KindConflict error, e.g. "No available copy".
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unexpected wraps an infrastructure failure.
func Unexpected(message string, cause error) error {
	return &Error{Kind: KindUnexpected, Message: message, Err: cause}
}

// KindOf classifies any error. Errors that carry no kind are unexpected,
// except for the storage sentinels which have an obvious category.
func KindOf(err error) ErrorKind {
	var catalogErr *Error
	if errors.As(err, &catalogErr) {
		return catalogErr.Kind
	}

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrUniqueViolation), errors.Is(err, ErrForeignKeyViolation):
		return KindConflict
	case errors.Is(err, ErrInvalidRequestBody), errors.Is(err, ErrNotNullViolation):
		return KindValidation
	default:
		return KindUnexpected
	}
}

// MessageOf returns the client-facing message of err, or fallback if err carries none.
func MessageOf(err error, fallback string) string {
	var catalogErr *Error
	if errors.As(err, &catalogErr) && catalogErr.Message != "" {
		return catalogErr.Message
	}

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return "Not found"
	case errors.Is(err, ErrConcurrencyConflict):
		return "Concurrent modification, please retry"
	case errors.Is(err, ErrUniqueViolation):
		return "Duplicate value"
	case errors.Is(err, ErrForeignKeyViolation):
		return "Referenced record does not exist or is still referenced"
	case errors.Is(err, ErrNotNullViolation):
		return "Required field missing"
	case errors.Is(err, ErrInvalidRequestBody):
		return "Invalid request body"
	}

	return fallback
}
