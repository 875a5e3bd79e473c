package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartpublish/registry/internal/cmd/smartpub"
	"github.com/smartpublish/registry/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := smartpub.NewRootCommand().ExecuteContext(ctx); err != nil {
		config.Exitf("smartpub: %v", err)
	}
}
