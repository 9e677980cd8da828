package log

import "context"

// Logger is used for logging messages with slog-style key/value pairs.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs a message at info level.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a message at warning level.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a message at error level.
	Error(ctx context.Context, msg string, args ...any)

	// Critical logs a message at critical level.
	Critical(ctx context.Context, msg string, args ...any)
}
