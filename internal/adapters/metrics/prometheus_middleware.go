package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
)

// PrometheusMiddleware observes each request sent through the mediator.
// A nil collector yields a pass-through middleware.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	if collector == nil {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			return next(ctx, request)
		}
	}

	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		started := time.Now()
		response, err := next(ctx, request)
		collector.RecordRequest(mediator.RequestName(request), time.Since(started).Seconds(), err)
		return response, err
	}
}
