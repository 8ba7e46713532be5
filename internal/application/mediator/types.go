package mediator

import (
	"context"
)

// Request is a command or query, such as solve.SolveCommand or
// benchmarkapp.ListFilesQuery. Handlers are matched by concrete type.
type Request interface{}

// Response is the result of handling a request
type Response interface{}

// RequestHandler handles a specific request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is a function that handles a request
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps handler execution with cross-cutting concerns:
// request ids, command logging, prometheus timings
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
