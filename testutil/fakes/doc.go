// Package fakes provides an in-memory catalog.Store for handler and API tests
// which do not need a real PostgreSQL database.
package fakes
