package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ulemsee/internal/cli"
	"ulemsee/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(config.LoadClient())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
