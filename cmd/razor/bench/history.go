package benchcmder

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/cliui"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/config"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/history"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/utils"
)

const historyLongDesc string = `List recorded benchmark runs, most recent first.

Runs are recorded with "razor bench --record" into the database named by
history.sqlite_path, or history.sqlite in the .razor/ directory.

Examples:
  razor bench history
  razor bench history --limit 5
  razor bench history --sqlite ./runs.sqlite`

const historyShortDesc string = "List recorded benchmark runs"

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		sqlitePath string
		cfg        *config.Config
		configDir  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagSQLite})

			cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := historyPath(cfg, configDir)
			if err != nil {
				return err
			}

			store, err := history.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &sqlitePath)

	return cmd
}

func printRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, cliui.DimStyle.Render("No recorded runs."))
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		r := run.Report
		rows = append(rows, []string{
			utils.Truncate(run.ID, 8),
			run.RecordedAt.Local().Format(time.DateTime),
			fmt.Sprint(r.TotalQueries),
			fmt.Sprint(r.UniqueQueries),
			fmt.Sprint(r.MemoryCapacity),
			fmt.Sprint(r.StabilityThreshold),
			fmt.Sprintf("%.2f%%", r.HitRate*100),
			fmt.Sprint(r.TokenSavings),
			fmt.Sprint(r.MsSavings),
			cliui.FormatDuration(r.Duration),
		})
	}

	cliui.Table(w, []string{
		"ID", "RECORDED", "QUERIES", "UNIQUE", "CAPACITY", "THRESHOLD",
		"HIT RATE", "TOKENS SAVED", "MS SAVED", "TOOK",
	}, rows)
}
