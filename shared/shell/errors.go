package shell

import "errors"

// Errors returned by RetryOption values when RetryWithExponentialBackoff applies them.
var (
	ErrInvalidMaxAttempts  = errors.New("retry: max attempts must be at least 1")
	ErrNegativeBaseDelay   = errors.New("retry: base delay is negative")
	ErrInvalidJitterFactor = errors.New("retry: jitter factor outside [0, 1]")
	ErrNilMetricsCollector = errors.New("retry: metrics collector is nil")
	ErrEmptyCommandType    = errors.New("retry: metrics need a command type label")
)
