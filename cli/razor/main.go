package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	razorcmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/razor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := razorcmder.NewRazorCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
