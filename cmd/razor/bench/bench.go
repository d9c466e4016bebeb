// Package benchcmder provides the bench command, which measures the savings
// of a memory gate placed before expensive inference.
package benchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/cliui"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/config"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/dotdir"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/gate"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/history"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/memorybank"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
)

type benchCommander struct {
	// Flag targets. The merged values live in cfg after PreRunE.
	capacity           int
	threshold          float64
	totalQueries       int
	uniqueQueries      int
	tokensPerInference int
	msPerInference     int
	seed               uint64
	sqlitePath         string

	record      bool
	metricsFile string
	jsonOut     bool

	cfg       *config.Config
	configDir string
	debug     bool
	logFile   string

	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

var benchFlags = []string{
	config.FlagBankCapacity,
	config.FlagThreshold,
	config.FlagTotalQueries,
	config.FlagUniqueQueries,
	config.FlagTokensPerInference,
	config.FlagMsPerInference,
	config.FlagBenchSeed,
	config.FlagSQLite,
}

const benchLongDesc string = `Benchmark the savings of a memory gate (synthetic proxy).

A workload of repeated queries is replayed twice. The baseline pays the
assumed inference cost for every query. The gated path first asks the
memory bank and only pays on a miss, after which it stores a verified
answer with confidence 0.99. A hit requires the stored confidence to meet
the stability threshold.

Values come from flags, then RAZOR_* environment variables, then
config.toml, then defaults.

Examples:
  razor bench
  razor bench --total-queries 5000 --unique-queries 100
  razor bench --capacity 50 --threshold 0.995
  razor bench --record
  razor bench --metrics-file razor.prom --json`

const benchShortDesc string = "Benchmark memory gate savings"

func NewBenchCmd() *cobra.Command {
	cmder := &benchCommander{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: benchShortDesc,
		Long:  benchLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, benchFlags)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFile, _ = cmd.Flags().GetString("log-file")
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()

			return cmder.run(cmd.Context())
		},
	}

	config.AddIntFlag(cmd, config.Flags, config.FlagBankCapacity, &cmder.capacity)
	config.AddFloatFlag(cmd, config.Flags, config.FlagThreshold, &cmder.threshold)
	config.AddIntFlag(cmd, config.Flags, config.FlagTotalQueries, &cmder.totalQueries)
	config.AddIntFlag(cmd, config.Flags, config.FlagUniqueQueries, &cmder.uniqueQueries)
	config.AddIntFlag(cmd, config.Flags, config.FlagTokensPerInference, &cmder.tokensPerInference)
	config.AddIntFlag(cmd, config.Flags, config.FlagMsPerInference, &cmder.msPerInference)
	config.AddUint64Flag(cmd, config.Flags, config.FlagBenchSeed, &cmder.seed)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)

	cmd.Flags().BoolVar(&cmder.record, "record", false, "Record the run in the benchmark history")
	cmd.Flags().StringVar(&cmder.metricsFile, "metrics-file", "", "Write prometheus metrics for the run to this file")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the report as JSON")

	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func (c *benchCommander) run(ctx context.Context) error {
	var (
		closeLog func() error
		err      error
	)
	c.logger, closeLog, err = logger.ForCLI(c.errOut, c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	bank, err := memorybank.New(
		c.cfg.MemoryBank.Capacity,
		c.cfg.MemoryBank.StabilityThreshold,
		memorybank.WithLogger(c.logger.With("component", "memory_bank")),
		memorybank.WithMetrics(metrics.NewGate(reg)),
	)
	if err != nil {
		return err
	}

	benchCfg := gate.Config{
		TotalQueries:       c.cfg.Bench.TotalQueries,
		UniqueQueries:      c.cfg.Bench.UniqueQueries,
		TokensPerInference: c.cfg.Bench.TokensPerInference,
		MsPerInference:     c.cfg.Bench.MsPerInference,
		Seed:               c.cfg.Bench.Seed,
	}

	var report *gate.Report
	err = cliui.Step(c.errOut, "Running memory gate benchmark", func() error {
		var runErr error
		report, runErr = gate.Run(ctx, benchCfg, bank, gate.WithLogger(c.logger))
		return runErr
	})
	if err != nil {
		return err
	}

	if c.metricsFile != "" {
		if err := metrics.WriteTextfile(c.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		c.logger.Debug("wrote metrics", "path", c.metricsFile)
	}

	if c.record {
		if err := c.recordRun(ctx, report); err != nil {
			return err
		}
	}

	if c.jsonOut {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(c.out, report)
	return nil
}

func (c *benchCommander) recordRun(ctx context.Context, report *gate.Report) error {
	path, err := historyPath(c.cfg, c.configDir)
	if err != nil {
		return err
	}

	store, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	run, err := store.Record(ctx, report)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	c.logger.Info("recorded benchmark run", "id", run.ID, "path", path)
	return nil
}

// historyPath prefers the configured database, then history.sqlite in the
// .razor/ directory.
func historyPath(cfg *config.Config, configDir string) (string, error) {
	if cfg.History.SQLitePath != "" {
		return cfg.History.SQLitePath, nil
	}
	return dotdir.NewManager().HistoryPath(configDir)
}

func printReport(w io.Writer, r *gate.Report) {
	cliui.Title(w, "Razor Memory Gate Savings Report")

	cliui.Report(w, []cliui.Section{
		{Name: "Workload", Rows: [][2]string{
			{"Total queries", fmt.Sprint(r.TotalQueries)},
			{"Unique queries", fmt.Sprintf("%d (lower means more repetition)", r.UniqueQueries)},
			{"Memory capacity", fmt.Sprint(r.MemoryCapacity)},
			{"Stability threshold", fmt.Sprint(r.StabilityThreshold)},
			{"Seed", fmt.Sprint(r.Seed)},
		}},
		{Name: "Inference Calls", Rows: [][2]string{
			{"Baseline inferences", fmt.Sprint(r.BaselineInferences)},
			{"Gated inferences", fmt.Sprint(r.GatedInferences)},
			{"Inferences avoided", fmt.Sprint(r.InferencesAvoided)},
			{"Memory hits", fmt.Sprint(r.MemoryHits)},
			{"Memory hit rate", fmt.Sprintf("%.2f%%", r.HitRate*100)},
		}},
		{Name: "Cost Proxies", Rows: [][2]string{
			{"Assumed tokens/inference", fmt.Sprint(r.TokensPerInference)},
			{"Baseline tokens", fmt.Sprint(r.BaselineTokens)},
			{"Gated tokens", fmt.Sprint(r.GatedTokens)},
			{"Token savings", fmt.Sprint(r.TokenSavings)},
			{"Assumed ms/inference", fmt.Sprint(r.MsPerInference)},
			{"Baseline latency (ms)", fmt.Sprint(r.BaselineMs)},
			{"Gated latency (ms)", fmt.Sprint(r.GatedMs)},
			{"Latency savings (ms)", fmt.Sprint(r.MsSavings)},
		}},
		{Name: "Reduction", Rows: [][2]string{
			{"Estimated token reduction", fmt.Sprintf("%.1f%%", r.TokenReduction)},
			{"Estimated latency reduction", fmt.Sprintf("%.1f%%", r.LatencyReduction)},
			{"Final bank size", fmt.Sprintf("%d / %d", r.Stats.Size, r.Stats.Capacity)},
		}},
	})

	cliui.Note(w, "Synthetic proxy benchmark. Real savings depend on workload repetition,\n"+
		"where the gate sits relative to inference, and the verification strategy.")
}
