// Package postgres provides test utilities for running the catalog Store against a real PostgreSQL.
//
// The same test suite runs against the pgx.Pool, sql.DB and sqlx.DB adapters.
// The adapter is selected by the ADAPTER_TYPE environment variable.
//
// Usage:
//
//	wrapper := CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//
//	CleanUp(t, wrapper)
//	store := wrapper.GetStore()
//
// Environment Variables:
//
//	CATALOG_TEST_DSN: PostgreSQL DSN, tests are skipped when it is not set
//	ADAPTER_TYPE: selects the adapter (pgx.pool, sql.db, sqlx.db), default pgx.pool
package postgres
