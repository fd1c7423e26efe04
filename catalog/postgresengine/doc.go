// Package postgresengine provides a PostgreSQL implementation of catalog.Store.
//
// It supports multiple database adapters (pgx, sql.DB, sqlx) and builds every
// statement with goqu. Issuing a copy relies on row locks with SKIP LOCKED plus a
// conditional status update, so concurrent borrowers never receive the same copy.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Repositories for books, copies and borrows, usable with or without a transaction
//   - Compare-and-set status updates that report catalog.ErrConcurrencyConflict
//   - Idempotent schema migration
//   - Optional logging, metrics and tracing via functional options
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	_ = store.Migrate(ctx)
//	books, _ := store.Repositories().Books.FindAll(ctx)
package postgresengine
