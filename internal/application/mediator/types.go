package mediator

import "context"

// Request is a planner command or query, e.g. *commands.PlanCraftingCommand
type Request interface{}

// Response is whatever the handler for a Request produces
type Response interface{}

// RequestHandler handles one request type registered with RegisterHandler
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is the next step in a middleware chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware runs around every Send. Logging is always installed; the
// Prometheus middleware only when metrics are enabled.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
