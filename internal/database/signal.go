package database

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context that is canceled on the first
// SIGINT or SIGTERM, letting a command finish the statement in flight and
// release its advisory lock. A second signal exits the process directly.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
		<-signals
		os.Exit(1)
	}()

	return ctx
}
