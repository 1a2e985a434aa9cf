package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/danmuck/rangephy/internal/block"
	"github.com/danmuck/rangephy/internal/capacity"
	"github.com/danmuck/rangephy/internal/config"
	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
)

// radioFlags are the numerology, MIMO and rate flags shared by capacity and rbs.
type radioFlags struct {
	numerology uint32
	scheme     string
	antennas   uint64
	modulation string
	mcsIndex   int
	coderate   float32
}

func (f *radioFlags) register(fs *pflag.FlagSet) {
	fs.Uint32Var(&f.numerology, "numerology", 0, "numerology id (0-5)")
	fs.StringVar(&f.scheme, "scheme", "none", "mimo scheme: none|diversity|multiplexing")
	fs.Uint64Var(&f.antennas, "antennas", 1, "transmit antennas")
	fs.StringVar(&f.modulation, "modulation", "qpsk", "modulation: qpsk|qam16|qam64|qam256")
	fs.IntVar(&f.mcsIndex, "mcs", -1, "MCS table index; overrides --modulation and --coderate")
	fs.Float32Var(&f.coderate, "coderate", 0.5, "code rate in (0, 1]")
}

func (f *radioFlags) mimo() (block.Mimo, error) {
	scheme, err := block.ParseMimoScheme(f.scheme)
	if err != nil {
		return block.Mimo{}, err
	}
	m := block.Mimo{Scheme: scheme, NumTxAntennas: f.antennas}
	return m, m.Validate()
}

func (f *radioFlags) rate() (mcs.Modulation, float32, error) {
	if f.mcsIndex >= 0 {
		entry, err := mcs.Lookup(f.mcsIndex)
		if err != nil {
			return 0, 0, err
		}
		return entry.Modulation, entry.CodeRate, nil
	}
	mod, err := mcs.ParseModulation(f.modulation)
	if err != nil {
		return 0, 0, err
	}
	return mod, f.coderate, nil
}

func newCapacityCmd() *cobra.Command {
	var (
		radio    radioFlags
		firstRB  uint8
		numRB    uint8
		target   uint8
		scenario string
	)
	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Compute RE, bit and net byte capacity of an allocation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				d    *block.Descriptor
				rate float32
				err  error
			)
			if scenario != "" {
				cfg, err := config.LoadScenarioConfig(scenario)
				if err != nil {
					return err
				}
				if d, rate, err = cfg.Descriptor(); err != nil {
					return err
				}
			} else {
				mimo, err := radio.mimo()
				if err != nil {
					return err
				}
				mod, r, err := radio.rate()
				if err != nil {
					return err
				}
				d = block.NewDescriptorWith(radio.numerology, block.Control{},
					block.Allocation{TargetUEID: target, FirstRB: firstRB, NumRB: numRB},
					mimo, block.MCS{Modulation: mod})
				if err := d.Validate(); err != nil {
					return err
				}
				rate = r
			}

			summary, err := capacity.Summarize(rate, d)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "numerology:        %d\n", d.NumerologyID)
			fmt.Fprintf(out, "allocation:        ue=%d rb=%d+%d\n", d.Allocation.TargetUEID, d.Allocation.FirstRB, d.Allocation.NumRB)
			fmt.Fprintf(out, "mimo:              %s x%d\n", d.Mimo.Scheme, d.Mimo.NumTxAntennas)
			fmt.Fprintf(out, "modulation:        %s @ %.5f\n", d.MCS.Modulation, rate)
			fmt.Fprintf(out, "resource elements: %d\n", summary.ResourceElements)
			fmt.Fprintf(out, "bits:              %d\n", summary.Bits)
			fmt.Fprintf(out, "net bytes:         %d\n", summary.NetBytes)
			if len(d.MACData) > 0 {
				fmt.Fprintf(out, "payload fits:      %t (%d bytes)\n", uint64(len(d.MACData)) <= summary.NetBytes, len(d.MACData))
			}
			return nil
		},
	}
	radio.register(cmd.Flags())
	cmd.Flags().Uint8Var(&firstRB, "first-rb", 0, "first resource block")
	cmd.Flags().Uint8Var(&numRB, "num-rb", numerology.MaxRB, "number of resource blocks")
	cmd.Flags().Uint8Var(&target, "target", block.AllTerminals, "target UE id")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario TOML; replaces the radio flags")
	return cmd
}

func newRBsCmd() *cobra.Command {
	var (
		radio    radioFlags
		infoBits uint64
		bytes    uint64
	)
	cmd := &cobra.Command{
		Use:   "rbs",
		Short: "Estimate resource blocks needed for a payload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mimo, err := radio.mimo()
			if err != nil {
				return err
			}
			mod, rate, err := radio.rate()
			if err != nil {
				return err
			}
			bits := infoBits
			if cmd.Flags().Changed("bytes") {
				bits = bytes * 8
			}
			n, err := capacity.RequiredRBs(radio.numerology, mimo, mod, rate, bits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			if n > numerology.MaxRB {
				return fmt.Errorf("payload needs %d RBs, band has %d", n, numerology.MaxRB)
			}
			return nil
		},
	}
	radio.register(cmd.Flags())
	cmd.Flags().Uint64Var(&infoBits, "info-bits", 0, "information bits to carry")
	cmd.Flags().Uint64Var(&bytes, "bytes", 0, "information bytes to carry; overrides --info-bits")
	return cmd
}
