// Command phyrecv accepts framed transport blocks from a MAC over TCP, logs
// each one and optionally records it into a SQLite trace.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/observability"
	"github.com/danmuck/rangephy/internal/protocol/link"
	"github.com/danmuck/rangephy/internal/tbtrace"
)

func main() {
	addr := flag.String("addr", ":9400", "listen address")
	tracePath := flag.String("trace", "", "record received blocks into this SQLite file")
	flag.Parse()

	observability.InitLogger("phyrecv")
	observability.RegisterMetrics()

	var rec *tbtrace.Recorder
	if *tracePath != "" {
		var err error
		if rec, err = tbtrace.Open(*tracePath); err != nil {
			log.Fatal().Err(err).Msg("open trace")
		}
		defer rec.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("listen")
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("phy receiver listening")

	r := &receiver{cfg: link.DefaultConfig()}
	if rec != nil {
		r.record = rec
	}
	if err := r.serve(ctx, ln); err != nil {
		log.Error().Err(err).Msg("phyrecv exited")
		stop()
		os.Exit(1)
	}
}
