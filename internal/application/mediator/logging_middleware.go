package mediator

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
)

// LoggingMiddleware logs every request with its duration and outcome
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		logger := common.LoggerFromContext(ctx)
		name := RequestName(request)
		start := time.Now()

		response, err := next(ctx, request)

		metadata := map[string]interface{}{
			"request":     name,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			logger.Log("ERROR", "Request failed", metadata)
			return response, err
		}
		logger.Log("DEBUG", "Request handled", metadata)
		return response, nil
	}
}

// RequestName returns the bare type name of a request:
// "*commands.PlanCraftingCommand" becomes "PlanCraftingCommand"
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
