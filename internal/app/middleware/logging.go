package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/queries"
)

// ErrorClassifier reports whether err is an expected business outcome; those
// are logged at info level instead of error.
type ErrorClassifier func(err error) bool

func Logging(log *slog.Logger, expected ErrorClassifier) CommandMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logOutcome(ctx, log, expected, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func QueryLogging(log *slog.Logger, expected ErrorClassifier) QueryMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		return queries.BusFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			logOutcome(ctx, log, expected, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, log *slog.Logger, expected ErrorClassifier, kind, key string, took time.Duration, err error) {
	switch {
	case err == nil:
		log.DebugContext(ctx, kind+" handled", "key", key, "duration", took)
	case expected != nil && expected(err):
		log.InfoContext(ctx, kind+" rejected", "key", key, "duration", took, "reason", err.Error())
	default:
		log.ErrorContext(ctx, kind+" failed", "key", key, "duration", took, "error", err)
	}
}
