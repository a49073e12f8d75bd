// Command reflections is an interactive web app for teaching reflections of
// figures in the Cartesian plane.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Root.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Error("reflections failed")
		stop()
		os.Exit(1)
	}
}
