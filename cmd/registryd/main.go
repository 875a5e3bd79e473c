package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartpublish/registry/internal/cmd/registryd"
	platformcmd "github.com/smartpublish/registry/internal/platform/cmd"
)

func main() {
	cfg, err := registryd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[REGISTRY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceRegistry, func(ctx context.Context) error {
		return registryd.Run(ctx, cfg)
	})
	if err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
