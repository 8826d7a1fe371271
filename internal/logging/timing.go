package logging

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Timed runs fn and logs its outcome with the elapsed time. Cancellation is
// logged as such and still returned.
func Timed(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	start := time.Now()
	logger.Debug("started", "command", name)

	err := fn(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	switch {
	case err == nil:
		logger.Info("completed", "command", name, "duration", elapsed)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		logger.Warn("cancelled", "command", name, "duration", elapsed)
	default:
		logger.Debug("failed", "command", name, "duration", elapsed, Err(err))
	}
	return err
}
