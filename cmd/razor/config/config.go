// Package configcmder provides the config command for managing persistent
// razor configuration stored in the .razor/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/config"
)

const configLongDesc string = `Manage persistent razor configuration.

Configuration is stored as config.toml in the .razor/ directory and provides
default values for command flags. CLI flags and RAZOR_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  memory_bank.capacity, memory_bank.stability_threshold,
  replay.capacity, replay.entropy_weight, replay.confidence_weight,
  replay.rarity_weight, replay.seed, replay.steps, replay.batch_size,
  replay.sample_every, replay.replace,
  bench.total_queries, bench.unique_queries, bench.tokens_per_inference,
  bench.ms_per_inference, bench.seed,
  history.sqlite_path

Use subcommands to get, set, or list configuration values:
  razor config set <key> <value>    Set a configuration value
  razor config get <key>            Get a configuration value
  razor config list                 List all configuration values

Examples:
  razor config set memory_bank.stability_threshold 0.99
  razor config set replay.seed 42
  razor config get bench.total_queries
  razor config list`

const configShortDesc string = "Manage persistent razor configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
