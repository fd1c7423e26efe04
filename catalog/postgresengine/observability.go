package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	metricStatementDuration    = "catalogstore_statement_duration_seconds"
	metricTxDuration           = "catalogstore_transaction_duration_seconds"
	metricDatabaseErrors       = "catalogstore_database_errors_total"
	metricConcurrencyConflicts = "catalogstore_concurrency_conflicts_total"
	spanNameTx                 = "catalogstore.transaction"
	spanAttrOperation          = "operation"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	labelConflictType          = "conflict_type"
	statusSuccess              = "success"
	statusError                = "error"
	operationTx                = "transaction"
	errorTypeBeginTx           = "begin_tx_error"
	errorTypeCommitTx          = "commit_tx_error"
	errorTypeRolledBack        = "rolled_back"
	errorTypeQuery             = "query_error"
	errorTypeExec              = "exec_error"
	errorTypeScan              = "scan_error"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

// logOperationContext logs operational information at info level.
func (s *Store) logOperationContext(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	} else if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarnContext logs non-critical issues.
func (s *Store) logWarnContext(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	} else if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logErrorContext logs error information at the error level.
func (s *Store) logErrorContext(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	} else if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (s *Store) recordStatementMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	s.recordDurationMetrics(ctx, metricStatementDuration, duration, operation, status)
}

// recordDurationMetrics records duration metrics with context if the collector supports it.
func (s *Store) recordDurationMetrics(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordErrorMetrics records database error metrics.
func (s *Store) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordConcurrencyConflictMetrics records conflicts raised by conditional writes.
func (s *Store) recordConcurrencyConflictMetrics(ctx context.Context, operation string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelConflictType: "concurrency",
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
	}
}

// txTracingObserver encapsulates tracing span lifecycle management for transactions.
type txTracingObserver struct {
	s    *Store
	span SpanContext
}

// startTxTracing starts a transaction span if the tracing collector is configured.
func (s *Store) startTxTracing(ctx context.Context) (*txTracingObserver, context.Context) {
	if s.tracingCollector == nil {
		return &txTracingObserver{s: s}, ctx
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNameTx, map[string]string{
		spanAttrOperation: operationTx,
	})

	return &txTracingObserver{s: s, span: span}, newCtx
}

func (o *txTracingObserver) finishSuccess(duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.s.tracingCollector.FinishSpan(o.span, statusSuccess, map[string]string{
		spanAttrDurationMS: o.formatDuration(duration),
	})
}

func (o *txTracingObserver) finishError(errorType string, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusError)
	o.span.AddAttribute(spanAttrErrorType, errorType)
	o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: o.formatDuration(duration),
	})
}

func (o *txTracingObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.s.toMilliseconds(duration))
}
