// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The wrapped handlers contain business orchestration only. The wrappers translate
// their results, errors and HandlerResult metadata into observability signals.
package observable
