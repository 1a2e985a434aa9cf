package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/rangephy/internal/capacity"
	"github.com/danmuck/rangephy/internal/config"
	"github.com/danmuck/rangephy/internal/protocol/link"
	"github.com/danmuck/rangephy/internal/tbtrace"
)

func newEncodeCmd() *cobra.Command {
	var (
		scenario string
		output   string
		sendAddr string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a scenario into framed transport blocks.",
		Long: `encode builds the transport block a scenario TOML describes and writes it ` +
			`as framed bytes to --out (stdout by default) or sends it to a PHY at --send.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadScenarioConfig(scenario)
			if err != nil {
				return err
			}
			d, rate, err := cfg.Descriptor()
			if err != nil {
				return err
			}
			fits, err := capacity.Fits(rate, d)
			if err != nil {
				return err
			}
			if !fits {
				log.Warn().Str("scenario", cfg.Name).Int("mac_bytes", len(d.MACData)).Msg("payload exceeds allocation capacity")
			}

			linkCfg := link.DefaultConfig()
			var w io.Writer = cmd.OutOrStdout()
			switch {
			case sendAddr != "":
				conn, err := link.Dial(cmd.Context(), "tcp", sendAddr, linkCfg)
				if err != nil {
					return err
				}
				defer conn.Close()
				w = conn
			case output != "" && output != "-":
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			sender := link.NewSender(w, linkCfg)
			for i := 0; i < count; i++ {
				d.Control.FirstInSubframe = cfg.Control.First && i == 0
				d.Control.LastInSubframe = cfg.Control.Last && i == count-1
				id, err := sender.Send(cmd.Context(), d)
				if err != nil {
					return err
				}
				log.Info().Uint64("message_id", id).Uint8("sequence", d.Control.SequenceNumber).Msg("encoded transport block")
				d.Control.SequenceNumber = d.Control.NextSequence()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario TOML")
	cmd.Flags().StringVar(&output, "out", "", "output file (default stdout)")
	cmd.Flags().StringVar(&sendAddr, "send", "", "PHY receiver address to send to instead of writing")
	cmd.Flags().IntVar(&count, "count", 1, "number of blocks, with consecutive sequence numbers")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var (
		input     string
		tracePath string
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode framed transport blocks and print a summary of each.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var rec *tbtrace.Recorder
			if tracePath != "" {
				var err error
				if rec, err = tbtrace.Open(tracePath); err != nil {
					return err
				}
				defer rec.Close()
			}

			out := cmd.OutOrStdout()
			receiver := link.NewReceiver(r, link.DefaultConfig())
			for {
				msg, err := receiver.Receive(cmd.Context())
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				d := msg.Descriptor
				numRE, err := capacity.DescriptorResourceElements(d)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "msg=%d seq=%d subframe=%d num=%d ue=%d rb=%d+%d mimo=%s x%d mod=%s info=%d coded=%d mac=%d re=%d last=%t\n",
					msg.Header.MessageID, d.Control.SequenceNumber, d.Control.SubframeNumber,
					d.NumerologyID, d.Allocation.TargetUEID, d.Allocation.FirstRB, d.Allocation.NumRB,
					d.Mimo.Scheme, d.Mimo.NumTxAntennas, d.MCS.Modulation,
					d.MCS.NumInfoBits, d.MCS.NumCodedBits, len(d.MACData), numRE, d.Control.LastInSubframe)
				if rec != nil {
					if _, err := rec.Record(d); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&input, "in", "", "input file (default stdin)")
	cmd.Flags().StringVar(&tracePath, "trace", "", "record decoded blocks into this SQLite file")
	return cmd
}
