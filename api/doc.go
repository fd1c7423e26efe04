// Package api is the HTTP boundary of the catalog service, built on gin.
//
// It serves the catalog CRUD endpoints for books and copies, the borrow and return workflow,
// the borrow history and the user-service pass-through under /api/catalog, plus /health.
// Errors are mapped to status codes once, by their catalog.ErrorKind.
package api
