package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"checkin-agent/internal/cli"
	"checkin-agent/internal/infrastructure/env"
)

func main() {
	dotenv, err := env.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args, dotenv); err != nil {
		fmt.Fprintf(os.Stderr, "checkin: %v\n", err)
		stop()
		os.Exit(1)
	}
}
