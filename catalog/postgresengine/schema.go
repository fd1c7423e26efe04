package postgresengine

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const operationMigrate = "migrate"

// schemaStatements are idempotent and run in order inside one transaction.
// The loans table is legacy and has no behavior attached.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_id  BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name  TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS publishers (
		publisher_id BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		book_id          BIGSERIAL PRIMARY KEY,
		title            TEXT NOT NULL,
		isbn             TEXT UNIQUE,
		author_id        BIGINT REFERENCES authors (author_id),
		publisher_id     BIGINT REFERENCES publishers (publisher_id),
		category_id      BIGINT REFERENCES categories (category_id),
		publication_year INTEGER,
		shelf_location   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS book_copies (
		copy_id BIGSERIAL PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books (book_id),
		barcode TEXT UNIQUE,
		status  TEXT NOT NULL DEFAULT 'AVAILABLE'
	)`,
	`CREATE INDEX IF NOT EXISTS book_copies_book_id_idx ON book_copies (book_id)`,
	`CREATE TABLE IF NOT EXISTS borrows (
		borrow_id    BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		book_copy_id BIGINT NOT NULL,
		book_id      BIGINT,
		issued_on    DATE NOT NULL,
		due_on       DATE NOT NULL,
		returned_on  DATE,
		status       TEXT NOT NULL,
		notes        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS borrows_book_copy_id_idx ON borrows (book_copy_id)`,
	`CREATE INDEX IF NOT EXISTS borrows_user_id_idx ON borrows (user_id)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id     BIGSERIAL PRIMARY KEY,
		copy_id     BIGINT NOT NULL,
		member_id   BIGINT NOT NULL,
		issued_by   BIGINT NOT NULL,
		issue_date  DATE,
		due_date    DATE,
		return_date DATE,
		fine_amount NUMERIC(10, 2)
	)`,
}

// Migrate applies the relational schema. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logErrorContext(ctx, logMsgBeginTxFailed, beginErr, logAttrOperation, operationMigrate)
		return errors.Join(catalog.ErrBeginTxFailed, beginErr)
	}

	for _, statement := range schemaStatements {
		if _, execErr := tx.Exec(ctx, statement); execErr != nil {
			s.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			s.recordErrorMetrics(ctx, operationMigrate, errorTypeExec)

			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !isTxAlreadyClosed(rollbackErr) {
				s.logWarnContext(ctx, logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
			}

			return errors.Join(catalog.ErrExecFailed, execErr)
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logErrorContext(ctx, logMsgCommitTxFailed, commitErr, logAttrOperation, operationMigrate)
		return errors.Join(catalog.ErrCommitTxFailed, commitErr)
	}

	s.logOperationContext(ctx, logMsgSchemaApplied, logAttrStatementCount, len(schemaStatements))

	return nil
}
