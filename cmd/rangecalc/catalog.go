package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danmuck/rangephy/internal/mcs"
	"github.com/danmuck/rangephy/internal/numerology"
)

func newNumerologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "numerology [id]",
		Short: "Show one numerology profile, or all of them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := numerology.All()
			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("numerology id: %w", err)
				}
				p, err := numerology.Lookup(uint32(id))
				if err != nil {
					return err
				}
				profiles = []numerology.Profile{p}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tK\tM\tCP\tCS\tSC/RB\tSYM/SF\tDT\tDF\tDCI QAM\tRE/RB\tDATA RE/RB\tSUBFRAME")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
					p.ID, p.K, p.M, p.NCP, p.NCS, p.SubcarriersPerRB, p.SymbolsPerSubframe,
					p.PilotDT, p.PilotDF, p.NumDCIQAM, p.REsPerRB(), p.DataREsPerRB(), p.SubframeDuration())
			}
			return tw.Flush()
		},
	}
}

func newMCSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcs [index]",
		Short: "Show the MCS table, one entry, or the entry selected for an SNR.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := mcs.Table()
			switch {
			case cmd.Flags().Changed("snr"):
				snr, _ := cmd.Flags().GetFloat32("snr")
				entry, err := mcs.Lookup(mcs.ForSNR(snr))
				if err != nil {
					return err
				}
				entries = []mcs.Entry{entry}
			case len(args) == 1:
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("mcs index: %w", err)
				}
				entry, err := mcs.Lookup(index)
				if err != nil {
					return err
				}
				entries = []mcs.Entry{entry}
			}

			thresholds := mcs.SNRThresholds()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MCS\tMODULATION\tBITS\tCODERATE\tMIN SNR")
			for _, e := range entries {
				minSNR := "-"
				if e.Index > 0 {
					minSNR = strconv.FormatFloat(float64(thresholds[e.Index-1]), 'f', 1, 32)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.5f\t%s\n",
					e.Index, e.Modulation, e.Modulation.BitsPerSymbol(), e.CodeRate, minSNR)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float32("snr", 0, "select the highest MCS whose threshold is at or below this SNR (dB)")
	return cmd
}
