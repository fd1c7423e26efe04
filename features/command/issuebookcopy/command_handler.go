package issuebookcopy

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-catalog/catalog"
	"github.com/AntonStoeckl/library-catalog/shared/core"
	"github.com/AntonStoeckl/library-catalog/shared/shell"
)

// Store defines the interface needed by the CommandHandler for transactional access.
type Store interface {
	WithinTx(ctx context.Context, fn catalog.TxFunc) error
}

// CommandHandler orchestrates the command processing workflow with pure business logic and retry.
// It handles the workflow: Validate -> Load -> Decide -> Persist, the last three in one transaction.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store        Store
	loanPolicy   core.LoanPolicy
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

// WithLoanPolicy replaces the default loan policy.
func WithLoanPolicy(policy core.LoanPolicy) Option {
	return func(h *CommandHandler) {
		h.loanPolicy = policy
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:      store,
		loanPolicy: core.DefaultLoanPolicy(),
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the command with retry logic for concurrency conflicts.
// Returns HandlerResult containing execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	if err := command.Validate(); err != nil {
		return Result{}, shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	var result Result

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		issued, execErr := h.executeCommand(retryCtx, command)
		result = issued

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{}, shell.NewErrorResult(retryMetrics), err
	}

	return result, shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := h.store.WithinTx(ctx, func(ctx context.Context, repos catalog.Repositories) error {
		// Load phase
		candidate, err := loadAvailableCopy(ctx, repos.Copies, *command.BookID)
		if err != nil {
			return err
		}

		// Business logic phase - delegate to pure core function
		decision := Decide(candidate, command, h.loanPolicy)
		if decisionErr := decision.HasError(); decisionErr != nil {
			return decisionErr
		}

		// Persist phase
		borrow, err := shell.PersistIssuance(ctx, repos, decision.Change)
		if err != nil {
			return err
		}

		result = resultFrom(borrow, *command.BookID)

		return nil
	})

	return result, err
}

func loadAvailableCopy(ctx context.Context, copies catalog.BookCopyRepository, bookID int64) (*catalog.BookCopy, error) {
	bookCopy, err := copies.FindFirstAvailableByBookID(ctx, bookID)
	if errors.Is(err, catalog.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // no candidate is a business outcome, decided by Decide
	}

	if err != nil {
		return nil, err
	}

	return &bookCopy, nil
}
