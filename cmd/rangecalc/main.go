// Command rangecalc inspects numerologies and MCS tables, sizes allocations,
// and encodes or decodes framed transport blocks.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/rangephy/internal/observability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rangecalc",
		Short: "Capacity calculator and transport block codec for 5G-RANGE numerologies.",
		Long: `rangecalc computes resource element and bit capacity for a numerology, ` +
			`allocation, MIMO setup and modulation, sizes allocations for a payload, ` +
			`and converts scenario files to framed transport blocks and back.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.InitLoggerTo("rangecalc", cmd.ErrOrStderr())
		},
	}
	root.AddCommand(
		newNumerologyCmd(),
		newMCSCmd(),
		newCapacityCmd(),
		newRBsCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
		newConfigCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
