package util

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is cancelled on receiving SIGINT or SIGTERM.
// The cancellation cause wraps ErrCancelled. A second signal forces immediate exit.
// The returned stop function releases the signal subscription.
func SetupSignalHandler(logger *slog.Logger) (context.Context, func()) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel(fmt.Errorf("%w: %s", ErrCancelled, sig))
		case <-done:
			return
		}

		// Running units are never interrupted, so a second signal is the only way out
		select {
		case sig := <-sigCh:
			logger.Warn("received second shutdown signal, forcing exit", "signal", sig.String())
			os.Exit(130)
		case <-done:
		}
	}()

	stop := func() {
		signal.Stop(sigCh)
		close(done)
		cancel(nil)
	}

	return ctx, stop
}
