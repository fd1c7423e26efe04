package issuespecificcopy

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

// CommandHandler orchestrates the workflow Validate -> Load -> Decide -> Persist with retry.
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

// Handle executes the command. A concurrency conflict on the copy is retried,
// a retry then usually ends with "Not available".
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

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := h.store.WithinTx(ctx, func(ctx context.Context, repos catalog.Repositories) error {
		requested, err := loadCopy(ctx, repos.Copies, *command.BookCopyID)
		if err != nil {
			return err
		}

		decision := Decide(requested, command, h.loanPolicy)
		if decisionErr := decision.HasError(); decisionErr != nil {
			return decisionErr
		}

		borrow, err := shell.PersistIssuance(ctx, repos, decision.Change)
		if err != nil {
			return err
		}

		result = resultFrom(borrow)

		return nil
	})

	return result, err
}

func loadCopy(ctx context.Context, copies catalog.BookCopyRepository, id int64) (*catalog.BookCopy, error) {
	bookCopy, err := copies.FindByID(ctx, id)
	if errors.Is(err, catalog.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // a missing copy is decided by Decide
	}

	if err != nil {
		return nil, err
	}

	return &bookCopy, nil
}
