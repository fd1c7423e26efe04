package core

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// DecisionResult should only be constructed using the provided factory methods:
// IdempotentDecision(), SuccessDecision(change), or ErrorDecision(err).
type DecisionResult[T any] struct {
	Outcome string // "idempotent", "success", or "error"
	Change  T      // zero value for idempotent and error decisions
	Err     error
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision[T any]() DecisionResult[T] {
	return DecisionResult[T]{
		Outcome: idempotentOutcome,
	}
}

// SuccessDecision creates a DecisionResult carrying the state change to persist.
func SuccessDecision[T any](change T) DecisionResult[T] {
	return DecisionResult[T]{
		Outcome: successOutcome,
		Change:  change,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision[T any](err error) DecisionResult[T] {
	return DecisionResult[T]{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// HasChangeToPersist returns true if the decision produced a state change.
func (r DecisionResult[T]) HasChangeToPersist() bool {
	return r.Outcome == successOutcome
}

// IsIdempotent returns true if nothing has to be written.
func (r DecisionResult[T]) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult[T]) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
