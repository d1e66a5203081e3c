package sigctx

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var stopSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// NotifyContext returns a context canceled on the first stop signal
// or on the returned cancel func.
func NotifyContext() (context.Context, context.CancelFunc) {
	return notifyContext(context.Background(), stopSignals...)
}

func notifyContext(
	parent context.Context, signals ...os.Signal,
) (context.Context, context.CancelFunc) {
	const op = "sigctx.NotifyContext"

	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			slog.Info("signal received", "op", op, "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
