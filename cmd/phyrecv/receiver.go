package main

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/capacity"
	"github.com/danmuck/rangephy/internal/protocol/link"
	"github.com/danmuck/rangephy/internal/tbtrace"
)

type recorder interface {
	Record(d *block.Descriptor) (tbtrace.Entry, error)
}

type receiver struct {
	cfg    link.Config
	record recorder
}

// serve accepts connections until ctx is cancelled, then waits for every
// connection handler to return.
func (r *receiver) serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.handle(ctx, conn)
		}()
	}
}

func (r *receiver) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	log.Info().Str("peer", peer).Msg("mac connected")

	rx := link.NewReceiver(conn, r.cfg)
	for {
		msg, err := rx.Receive(ctx)
		switch {
		case errors.Is(err, io.EOF):
			log.Info().Str("peer", peer).Msg("mac disconnected")
			return
		case ctx.Err() != nil:
			return
		case err != nil:
			log.Error().Err(err).Str("peer", peer).Msg("receive failed; closing connection")
			return
		}

		d := msg.Descriptor
		numRE, err := capacity.DescriptorResourceElements(d)
		if err != nil {
			log.Warn().Err(err).Str("peer", peer).Uint64("message_id", msg.Header.MessageID).Msg("re capacity unavailable")
		}
		log.Info().
			Str("peer", peer).
			Uint64("message_id", msg.Header.MessageID).
			Uint8("sequence", d.Control.SequenceNumber).
			Uint32("subframe", d.Control.SubframeNumber).
			Bool("last_in_subframe", d.Control.LastInSubframe).
			Uint32("numerology", d.NumerologyID).
			Uint8("target_ue", d.Allocation.TargetUEID).
			Uint8("first_rb", d.Allocation.FirstRB).
			Uint8("num_rb", d.Allocation.NumRB).
			Str("modulation", d.MCS.Modulation.String()).
			Int("mac_bytes", len(d.MACData)).
			Uint64("re_capacity", numRE).
			Msg("transport block received")

		if r.record != nil {
			if _, err := r.record.Record(d); err != nil {
				log.Error().Err(err).Str("peer", peer).Msg("trace record failed")
			}
		}
	}
}
