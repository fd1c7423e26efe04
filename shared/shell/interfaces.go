package shell

import "context"

// Command is implemented by all command types of the feature slices.
type Command interface {
	CommandType() string
}

// Query is implemented by all query types of the feature slices.
type Query interface {
	QueryType() string
}

// CommandHandler executes a command and returns its result together with the execution metadata.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// QueryHandler executes a query.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
