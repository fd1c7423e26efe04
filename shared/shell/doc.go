// Package shell contains the imperative infrastructure shared by the feature slices:
// retries with exponential backoff for concurrency conflicts, the HandlerResult
// reported by command handlers and the observability helpers used by the
// observable wrappers.
//
// In Hexagonal Architecture terminology this is part of the application layer,
// surrounding the pure decisions in package core.
package shell
