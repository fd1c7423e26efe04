package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine/internal/adapters"
)

const (
	logMsgBuildQueryFailed     = "failed to build sql statement"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database statement execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgBeginTxFailed        = "failed to begin transaction"
	logMsgCommitTxFailed       = "failed to commit transaction"
	logMsgRollbackTxFailed     = "failed to roll back transaction"
	logMsgTxRolledBack         = "transaction rolled back"
	logMsgTxCommitted          = "transaction committed"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logMsgSchemaApplied        = "schema applied"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "catalog store operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrOperation           = "operation"
	logAttrDurationMS          = "duration_ms"
	logAttrStatementCount      = "statement_count"
	tableAuthors               = "authors"
	tablePublishers            = "publishers"
	tableCategories            = "categories"
	tableBooks                 = "books"
	tableCopies                = "book_copies"
	tableBorrows               = "borrows"
	dialectPostgres            = "postgres"
	castDate                   = "?::date"
	sqlStateUniqueViolation    = "23505"
	sqlStateForeignKeyViolated = "23503"
	sqlStateNotNullViolation   = "23502"
)

var dialect = goqu.Dialect(dialectPostgres)

// Store is the PostgreSQL implementation of catalog.Store.
// It works on top of pgxpool.Pool, sql.DB or sqlx.DB and builds all SQL with goqu.
type Store struct {
	db               adapters.DBAdapter
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
// The sql.DB must use a PostgreSQL driver, e.g. github.com/lib/pq.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options)
}

func newStore(db adapters.DBAdapter, options []Option) (*Store, error) {
	s := &Store{db: db}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Repositories returns repositories that run each statement outside any explicit transaction.
func (s *Store) Repositories() catalog.Repositories {
	return s.repositoriesOn(s.db)
}

func (s *Store) repositoriesOn(q adapters.Querier) catalog.Repositories {
	exec := executor{q: q, store: s}

	return catalog.Repositories{
		Books:   bookRepository{exec},
		Copies:  copyRepository{exec},
		Borrows: borrowRepository{exec},
	}
}

// WithinTx runs fn in one transaction. The transaction is committed if fn returns nil
// and rolled back otherwise; the error of fn is returned unchanged.
func (s *Store) WithinTx(ctx context.Context, fn catalog.TxFunc) error {
	tracing, ctx := s.startTxTracing(ctx)
	start := time.Now()

	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logErrorContext(ctx, logMsgBeginTxFailed, beginErr)
		s.recordErrorMetrics(ctx, operationTx, errorTypeBeginTx)
		tracing.finishError(errorTypeBeginTx, time.Since(start))

		return errors.Join(catalog.ErrBeginTxFailed, beginErr)
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !isTxAlreadyClosed(rollbackErr) {
			s.logWarnContext(ctx, logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
		}
	}()

	if fnErr := fn(ctx, s.repositoriesOn(tx)); fnErr != nil {
		if errors.Is(fnErr, catalog.ErrConcurrencyConflict) {
			s.logOperationContext(ctx, logMsgConcurrencyConflict, logAttrOperation, operationTx)
			s.recordConcurrencyConflictMetrics(ctx, operationTx)
		}

		s.logOperationContext(ctx, logMsgTxRolledBack, logAttrError, fnErr.Error())
		tracing.finishError(errorTypeRolledBack, time.Since(start))

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logErrorContext(ctx, logMsgCommitTxFailed, commitErr)
		s.recordErrorMetrics(ctx, operationTx, errorTypeCommitTx)
		tracing.finishError(errorTypeCommitTx, time.Since(start))

		return errors.Join(catalog.ErrCommitTxFailed, classifyDBError(commitErr))
	}

	committed = true
	duration := time.Since(start)

	s.logOperationContext(ctx, logMsgTxCommitted, logAttrDurationMS, s.toMilliseconds(duration))
	s.recordDurationMetrics(ctx, metricTxDuration, duration, operationTx, statusSuccess)
	tracing.finishSuccess(duration)

	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// executor runs goqu-built statements on a connection or transaction with logging and metrics.
type executor struct {
	q     adapters.Querier
	store *Store
}

type scanFunc func(rows adapters.DBRows) error

// query builds, runs and scans a select (or a statement with RETURNING).
// It returns the number of rows scanned.
func (e executor) query(ctx context.Context, operation string, ds toSQLer, scan scanFunc) (int, error) {
	sqlQuery, args, buildErr := ds.ToSQL()
	if buildErr != nil {
		e.store.logErrorContext(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := e.q.Query(ctx, sqlQuery, args...)
	if queryErr != nil {
		duration := time.Since(start)
		e.store.logQueryWithDuration(ctx, sqlQuery, operation, duration)
		e.store.logErrorContext(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		e.store.recordStatementMetrics(ctx, operation, statusError, duration)
		e.store.recordErrorMetrics(ctx, operation, errorTypeQuery)

		return 0, errors.Join(catalog.ErrQueryingFailed, classifyDBError(queryErr))
	}
	defer e.closeRows(ctx, rows)

	count := 0
	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			e.store.logErrorContext(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)
			e.store.recordErrorMetrics(ctx, operation, errorTypeScan)

			return count, errors.Join(catalog.ErrScanningRowFailed, scanErr)
		}
		count++
	}

	duration := time.Since(start)
	e.store.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if rowsErr := rows.Err(); rowsErr != nil {
		e.store.logErrorContext(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		e.store.recordStatementMetrics(ctx, operation, statusError, duration)
		e.store.recordErrorMetrics(ctx, operation, errorTypeQuery)

		return count, errors.Join(catalog.ErrQueryingFailed, classifyDBError(rowsErr))
	}

	e.store.recordStatementMetrics(ctx, operation, statusSuccess, duration)

	return count, nil
}

// exec builds and runs an insert/update/delete and returns the number of affected rows.
func (e executor) exec(ctx context.Context, operation string, ds toSQLer) (int64, error) {
	sqlQuery, args, buildErr := ds.ToSQL()
	if buildErr != nil {
		e.store.logErrorContext(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
		return 0, errors.Join(catalog.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	result, execErr := e.q.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.store.logQueryWithDuration(ctx, sqlQuery, operation, duration)

	if execErr != nil {
		e.store.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		e.store.recordStatementMetrics(ctx, operation, statusError, duration)
		e.store.recordErrorMetrics(ctx, operation, errorTypeExec)

		return 0, errors.Join(catalog.ErrExecFailed, classifyDBError(execErr))
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.store.logErrorContext(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(catalog.ErrRowsAffectedFailed, rowsAffectedErr)
	}

	e.store.recordStatementMetrics(ctx, operation, statusSuccess, duration)

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (e executor) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.store.logWarnContext(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// toSQLer is implemented by all goqu datasets.
type toSQLer interface {
	ToSQL() (string, []any, error)
}

// classifyDBError joins constraint violations with the matching catalog sentinel,
// for both the pgx and the lib/pq error types.
func classifyDBError(err error) error {
	switch sqlStateOf(err) {
	case sqlStateUniqueViolation:
		return errors.Join(catalog.ErrUniqueViolation, err)
	case sqlStateForeignKeyViolated:
		return errors.Join(catalog.ErrForeignKeyViolation, err)
	case sqlStateNotNullViolation:
		return errors.Join(catalog.ErrNotNullViolation, err)
	default:
		return err
	}
}

func sqlStateOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

func isTxAlreadyClosed(err error) bool {
	return errors.Is(err, sql.ErrTxDone) || errors.Is(err, pgx.ErrTxClosed)
}

// nullable turns a nil pointer into an untyped nil so that goqu renders NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}

	return *p
}
