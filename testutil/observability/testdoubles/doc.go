// Package testdoubles provides spies for the catalog observability interfaces.
//
//   - ContextualLoggerSpy: captures context-aware log calls
//   - MetricsCollectorSpy: captures durations, counters and values, with or without context
//   - TracingCollectorSpy: captures started and finished spans
//
// They let tests verify instrumentation of the store, the handlers and the HTTP layer
// without a telemetry backend.
package testdoubles
