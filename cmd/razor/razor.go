// Package razorcmder
package razorcmder

import (
	"github.com/spf13/cobra"

	benchcmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/razor/bench"
	configcmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/razor/config"
	replaycmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/razor/replay"
	versioncmder "github.com/RobbieRazor/robbies-razor-benchmarks/cmd/version"
)

const razorLongDesc string = `Razor measures what a confidence-gated memory and a selective
replay buffer buy you.

Run benchmarks using:
  razor bench            Memory gate savings over a synthetic workload
  razor bench history    Previously recorded benchmark runs
  razor replay           Prioritised replay over a simulated training loop`

const razorShortDesc string = "Razor - memory gating and selective replay benchmarks"

func NewRazorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "razor",
		Short:        razorShortDesc,
		Long:         razorLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .razor/ configuration directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(benchcmder.NewBenchCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
