package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Run executes one dispatcher invocation with the provided arguments and
// returns the process exit code. An interrupt cancels the run context; the
// delivery loop finishes the in-flight recipient and stops at the next
// cancellation point.
func (a *App) Run(args []string) int {
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigint)

	go func() {
		<-sigint

		slog.Info("interrupt received, stopping after the in-flight recipient")

		if a.cancel != nil {
			a.cancel()
		}
	}()

	return a.cli.Run(a.ctx, args)
}

// Stop closes resources in order.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
