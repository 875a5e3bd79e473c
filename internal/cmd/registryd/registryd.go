// Package registryd wires and runs the registry HTTP server.
package registryd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	platformcmd "github.com/smartpublish/registry/internal/platform/cmd"
	"github.com/smartpublish/registry/internal/registry/api/httpapi"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/service"
	"github.com/smartpublish/registry/internal/registry/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds registryd configuration. Environment variables provide
// defaults; flags override.
type Config struct {
	Addr   string `env:"SMARTPUBLISH_ADDR" envDefault:":8080"`
	DBPath string `env:"SMARTPUBLISH_DB_PATH" envDefault:"registry.db"`
}

// ParseConfig loads environment defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the registry server and blocks until ctx is canceled or the
// server fails.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	bus := event.NewBus()
	defer bus.Close()
	locks := service.NewLockTable()

	router := httpapi.NewRouter(&httpapi.Handler{
		Contributors: service.NewContributorRegistry(store, bus, locks),
		Factory:      service.NewAssetFactory(store, bus, locks),
		Workflows:    service.NewPeerReviewWorkflow(store, bus, locks),
		Events:       store,
		Bus:          bus,
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("registry listening on %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
