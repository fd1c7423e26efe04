package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog/catalog/postgresengine"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	envTestDSN      = "CATALOG_TEST_DSN"
	envAdapterType  = "ADAPTER_TYPE"
	truncateCatalog = "TRUNCATE TABLE borrows, book_copies, books, authors, publishers, categories, loans RESTART IDENTITY"
)

// Wrapper abstracts over the different connection types.
type Wrapper interface {
	GetStore() *postgresengine.Store
	Exec(ctx context.Context, query string, args ...any) error
	QueryID(ctx context.Context, query string, args ...any) (int64, error)
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.pool.Exec(ctx, query, args...)
	return err
}

func (w *PGXPoolWrapper) QueryID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := w.pool.QueryRow(ctx, query, args...).Scan(&id)

	return id, err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.db.ExecContext(ctx, query, args...)
	return err
}

func (w *SQLDBWrapper) QueryID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := w.db.QueryRowContext(ctx, query, args...).Scan(&id)

	return id, err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) GetStore() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.db.ExecContext(ctx, query, args...)
	return err
}

func (w *SQLXWrapper) QueryID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := w.db.QueryRowContext(ctx, query, args...).Scan(&id)

	return id, err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// TestDSN returns the DSN of the test database or skips the test if none is configured.
func TestDSN(t testing.TB) string {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", envTestDSN)
	}

	return dsn
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE and applies the schema.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := TestDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv(envAdapterType)); adapterType {
	case typePGXPool, "":
		poolConfig, err := pgxpool.ParseConfig(dsn)
		require.NoError(t, err, "error parsing DSN in test setup")
		poolConfig.MaxConns = 10

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db, err := sql.Open("postgres", dsn)
		require.NoError(t, err, "error opening database in test setup")
		db.SetMaxOpenConns(10)

		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db, err := sqlx.Open("postgres", dsn)
		require.NoError(t, err, "error opening database in test setup")
		db.SetMaxOpenConns(10)

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetStore().Migrate(ctx), "error applying schema")

	return wrapper
}

// CleanUp empties all catalog tables and resets their id sequences.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	err := wrapper.Exec(context.Background(), truncateCatalog)
	require.NoError(t, err, "error cleaning up the catalog tables")
}

// GivenAuthor inserts an author and returns its id.
func GivenAuthor(t testing.TB, wrapper Wrapper, firstName, lastName string) int64 {
	t.Helper()

	return givenRow(t, wrapper, "authors", "author_id", map[string]any{"first_name": firstName, "last_name": lastName})
}

// GivenCategory inserts a category and returns its id.
func GivenCategory(t testing.TB, wrapper Wrapper, name string) int64 {
	t.Helper()

	return givenRow(t, wrapper, "categories", "category_id", map[string]any{"name": name})
}

// GivenPublisher inserts a publisher and returns its id.
func GivenPublisher(t testing.TB, wrapper Wrapper, name string) int64 {
	t.Helper()

	return givenRow(t, wrapper, "publishers", "publisher_id", map[string]any{"name": name})
}

func givenRow(t testing.TB, wrapper Wrapper, table, idColumn string, values map[string]any) int64 {
	columns := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values))

	for column, value := range values {
		columns = append(columns, column)
		args = append(args, value)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), idColumn,
	)

	id, err := wrapper.QueryID(context.Background(), insert, args...)
	require.NoError(t, err, "error inserting into %s", table)

	return id
}
