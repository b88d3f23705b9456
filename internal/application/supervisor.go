package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Supervise keeps a long-running subscription alive. Whenever run returns or
// panics while ctx is still live, the failure is logged and run is restarted
// after delay. Supervise returns once ctx is cancelled.
func Supervise(ctx context.Context, name string, delay time.Duration, run func(ctx context.Context) error) {
	for attempt := 1; ; attempt++ {
		err := runGuarded(ctx, run)
		if ctx.Err() != nil {
			slog.Info("subscription stopped", "name", name)
			return
		}

		if err == nil {
			err = errors.New("subscription ended")
		}
		slog.Warn("subscription failed, restarting",
			"name", name,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			slog.Info("subscription stopped", "name", name)
			return
		case <-time.After(delay):
		}
	}
}

func runGuarded(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return run(ctx)
}
