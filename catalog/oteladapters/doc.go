// Package oteladapters implements the catalog observability interfaces on top of OpenTelemetry.
//
//   - SlogBridgeLogger and OTelLogger implement catalog.ContextualLogger
//   - MetricsCollector implements catalog.ContextualMetricsCollector
//   - TracingCollector implements catalog.TracingCollector
//
// Wire them into the store and the handlers via their WithLogger, WithMetrics
// and WithTracing options.
package oteladapters
