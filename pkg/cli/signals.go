package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupSignalHandler returns a context that is canceled on SIGINT or
// SIGTERM. A second signal exits the process with status 130. The returned
// function releases the signal handler and cancels the context.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	stop := make(chan struct{})
	go func() {
		for n := 0; ; n++ {
			select {
			case <-sigChan:
				if n > 0 {
					os.Exit(130)
				}
				cancel()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stop)
			cancel()
		})
	}
}
