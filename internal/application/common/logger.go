package common

import "context"

// Logger receives planner and provider log lines. Levels are upper-case
// (DEBUG, INFO, WARNING, ERROR) and metadata may be nil.
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

type loggerContextKey struct{}

// WithLogger attaches logger to ctx for the handlers and services below it
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// LoggerFromContext returns the attached logger, or one that discards everything
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(Logger); ok {
		return logger
	}
	return discardLogger{}
}

type discardLogger struct{}

func (discardLogger) Log(string, string, map[string]interface{}) {}
