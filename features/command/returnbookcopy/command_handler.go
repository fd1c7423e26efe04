package returnbookcopy

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/shell"
)

// Store defines the interface needed by the CommandHandler for transactional access.
type Store interface {
	WithinTx(ctx context.Context, fn catalog.TxFunc) error
}

// CommandHandler orchestrates the workflow Validate -> Load -> Decide -> Persist with retry.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command with retry logic for concurrency conflicts.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	if err := command.Validate(); err != nil {
		return Result{}, shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	var (
		result       Result
		isIdempotent bool
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		returned, idempotent, execErr := h.executeCommand(retryCtx, command)
		result = returned
		isIdempotent = idempotent

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{}, shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return result, shell.NewIdempotentResult(retryMetrics), nil
	}

	return result, shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Result, bool, error) {
	var (
		result     Result
		idempotent bool
	)

	err := h.store.WithinTx(ctx, func(ctx context.Context, repos catalog.Repositories) error {
		// Load phase
		s, err := load(ctx, repos, command)
		if err != nil {
			return err
		}

		// Business logic phase - delegate to pure core function
		decision := Decide(s, command)
		if decisionErr := decision.HasError(); decisionErr != nil {
			return decisionErr
		}

		if decision.IsIdempotent() {
			idempotent = true
			result = resultFrom(nil)

			return nil
		}

		// Persist phase
		if persistErr := shell.PersistRestitution(ctx, repos, decision.Change); persistErr != nil {
			return persistErr
		}

		result = resultFrom(decision.Change.Borrow)

		return nil
	})

	return result, idempotent, err
}

func load(ctx context.Context, repos catalog.Repositories, command Command) (State, error) {
	var (
		s   State
		err error
	)

	if command.BookCopyID != nil {
		if s.RequestedCopy, err = findCopy(ctx, repos.Copies, *command.BookCopyID); err != nil {
			return State{}, err
		}
	}

	if s.ActiveBorrow, err = findActiveBorrow(ctx, repos.Borrows, command); err != nil {
		return State{}, err
	}

	if s.ActiveBorrow != nil && s.RequestedCopy == nil {
		if s.BorrowedCopy, err = findCopy(ctx, repos.Copies, s.ActiveBorrow.BookCopyID); err != nil {
			return State{}, err
		}
	}

	return s, nil
}

// findActiveBorrow loads the borrow by id if one is given, otherwise the copy's latest active borrow.
// A borrow id that matches nothing or a borrow that is not ACTIVE anymore counts as "no borrow".
func findActiveBorrow(ctx context.Context, borrows catalog.BorrowRepository, command Command) (*catalog.Borrow, error) {
	if command.BorrowID != nil {
		borrow, err := borrows.FindByID(ctx, *command.BorrowID)
		if errors.Is(err, catalog.ErrRecordNotFound) {
			return nil, nil //nolint:nilnil // absence is tolerated
		}

		if err != nil {
			return nil, err
		}

		if !borrow.IsActive() {
			return nil, nil //nolint:nilnil // already closed
		}

		return &borrow, nil
	}

	if command.BookCopyID == nil {
		return nil, nil //nolint:nilnil // nothing to look up by
	}

	copyBorrows, err := borrows.FindByBookCopyID(ctx, *command.BookCopyID)
	if err != nil {
		return nil, err
	}

	return latestActive(copyBorrows), nil
}

func findCopy(ctx context.Context, copies catalog.BookCopyRepository, id int64) (*catalog.BookCopy, error) {
	bookCopy, err := copies.FindByID(ctx, id)
	if errors.Is(err, catalog.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // absence is decided by Decide
	}

	if err != nil {
		return nil, err
	}

	return &bookCopy, nil
}
