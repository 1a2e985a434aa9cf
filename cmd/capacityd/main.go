// Command capacityd serves the capacity calculator and descriptor codec over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/observability"
	"github.com/danmuck/rangephy/internal/server"
)

func main() {
	configPath := flag.String("config", "", "service config TOML (defaults apply when empty)")
	addr := flag.String("addr", "", "listen address; overrides the config file")
	flag.Parse()

	observability.InitLogger("capacityd")

	cfg, err := loadServiceConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg).Serve(ctx); err != nil {
		log.Error().Err(err).Msg("capacityd exited")
		os.Exit(1)
	}
}
