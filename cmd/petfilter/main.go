package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Apurer/go-adoption-filters/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "petfilter:", err)
		stop()
		os.Exit(1)
	}
}
