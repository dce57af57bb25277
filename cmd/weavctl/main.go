// Package main is the entry point for the weavctl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/platformbuilds/weaviate-client-go/internal/cli"
)

// Version information (set at build time via ldflags)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.SetVersionInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
