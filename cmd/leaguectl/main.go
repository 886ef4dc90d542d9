// Command leaguectl runs a synthetic league, checks a running service and
// exports league reports from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/pokerleague/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
