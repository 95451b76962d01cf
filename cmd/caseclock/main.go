// Command caseclock is the voice-driven time and expense tracker CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caseclockapp/caseclock-mvp/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Execute(ctx))
}
