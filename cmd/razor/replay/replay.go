// Package replaycmder provides the replay command, which runs a selective
// replay buffer through a simulated training loop.
package replaycmder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/cliui"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/config"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/logger"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/metrics"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/replay"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/replaysim"
)

type replayCommander struct {
	capacity         int
	entropyWeight    float64
	confidenceWeight float64
	rarityWeight     float64
	seed             uint64
	steps            int
	batchSize        int
	sampleEvery      int
	replace          bool

	metricsFile string
	jsonOut     bool

	cfg     *config.Config
	debug   bool
	logFile string
}

var replayFlags = []string{
	config.FlagReplayCapacity,
	config.FlagEntropyWeight,
	config.FlagConfidenceWeight,
	config.FlagRarityWeight,
	config.FlagReplaySeed,
	config.FlagSteps,
	config.FlagBatchSize,
	config.FlagSampleEvery,
	config.FlagReplace,
}

// result is the JSON form of a simulation.
type result struct {
	Capacity int                `json:"capacity"`
	Weights  replay.Weights     `json:"weights"`
	Held     int                `json:"held"`
	Summary  *replaysim.Summary `json:"summary"`
}

const replayLongDesc string = `Run a selective replay buffer through a simulated training loop.

Every step adds one synthetic example with an exponentially distributed
loss and uniform confidence and rarity. Each example is scored

  score = entropy*loss + confidence*(1 - confidence) + rarity*rarity

and the buffer keeps only the highest scores once full. Every
--sample-every steps a batch is drawn with probability softmax(score).
A sampled mean above the buffer mean shows the prioritisation at work.

Examples:
  razor replay
  razor replay --steps 10000 --capacity 500 --batch-size 64
  razor replay --replace --seed 42
  razor replay --rarity-weight 1.0 --json`

const replayShortDesc string = "Simulate prioritised replay"

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, replayFlags)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFile, _ = cmd.Flags().GetString("log-file")

			return cmder.run(cmd)
		},
	}

	config.AddIntFlag(cmd, config.Flags, config.FlagReplayCapacity, &cmder.capacity)
	config.AddFloatFlag(cmd, config.Flags, config.FlagEntropyWeight, &cmder.entropyWeight)
	config.AddFloatFlag(cmd, config.Flags, config.FlagConfidenceWeight, &cmder.confidenceWeight)
	config.AddFloatFlag(cmd, config.Flags, config.FlagRarityWeight, &cmder.rarityWeight)
	config.AddUint64Flag(cmd, config.Flags, config.FlagReplaySeed, &cmder.seed)
	config.AddIntFlag(cmd, config.Flags, config.FlagSteps, &cmder.steps)
	config.AddIntFlag(cmd, config.Flags, config.FlagBatchSize, &cmder.batchSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagSampleEvery, &cmder.sampleEvery)
	config.AddBoolFlag(cmd, config.Flags, config.FlagReplace, &cmder.replace)

	cmd.Flags().StringVar(&cmder.metricsFile, "metrics-file", "", "Write prometheus metrics for the run to this file")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the summary as JSON")

	return cmd
}

func (c *replayCommander) run(cmd *cobra.Command) error {
	log, closeLog, err := logger.ForCLI(cmd.ErrOrStderr(), c.debug, c.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rc := c.cfg.Replay
	weights := replay.Weights{
		Entropy:    rc.EntropyWeight,
		Confidence: rc.ConfidenceWeight,
		Rarity:     rc.RarityWeight,
	}

	reg := prometheus.NewRegistry()
	opts := []replay.Option{
		replay.WithWeights(weights),
		replay.WithLogger(log.With("component", "replay")),
		replay.WithMetrics(metrics.NewReplay(reg)),
	}
	if rc.Seed != 0 {
		opts = append(opts, replay.WithSeed(rc.Seed))
	}

	buf, err := replay.New(rc.Capacity, opts...)
	if err != nil {
		return err
	}

	simCfg := replaysim.Config{
		Steps:       rc.Steps,
		BatchSize:   rc.BatchSize,
		SampleEvery: rc.SampleEvery,
		Replace:     rc.Replace,
		// The workload stays reproducible even when sampling is unseeded.
		Seed: rc.Seed,
	}

	var summary *replaysim.Summary
	err = cliui.Step(cmd.ErrOrStderr(), "Simulating replay", func() error {
		var runErr error
		summary, runErr = replaysim.Run(cmd.Context(), simCfg, buf, replaysim.WithLogger(log))
		return runErr
	})
	if err != nil {
		return err
	}

	if c.metricsFile != "" {
		if err := metrics.WriteTextfile(c.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	res := result{
		Capacity: buf.Capacity(),
		Weights:  buf.Weights(),
		Held:     buf.Len(),
		Summary:  summary,
	}

	if c.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printSummary(cmd.OutOrStdout(), res, rc.Replace)
	return nil
}

func printSummary(w io.Writer, res result, replace bool) {
	s := res.Summary
	mode := "without replacement"
	if replace {
		mode = "with replacement"
	}

	cliui.Title(w, "Razor Selective Replay Report")

	cliui.Report(w, []cliui.Section{
		{Name: "Buffer", Rows: [][2]string{
			{"Capacity", fmt.Sprint(res.Capacity)},
			{"Held", fmt.Sprint(res.Held)},
			{"Weights (entropy/confidence/rarity)", fmt.Sprintf("%g / %g / %g",
				res.Weights.Entropy, res.Weights.Confidence, res.Weights.Rarity)},
		}},
		{Name: "Sampling", Rows: [][2]string{
			{"Examples added", fmt.Sprint(s.Added)},
			{"Batches", fmt.Sprintf("%d (%s)", s.Batches, mode)},
			{"Examples sampled", fmt.Sprint(s.Sampled)},
			{"Distinct examples sampled", fmt.Sprint(s.Unique)},
		}},
		{Name: "Priority", Rows: [][2]string{
			{"Mean buffer score", fmt.Sprintf("%.4f", s.MeanBufferScore)},
			{"Mean sampled score", fmt.Sprintf("%.4f", s.MeanSampledScore)},
		}},
	})

	if len(s.Top) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n\n", cliui.KeyStyle.Render("Most sampled"))
	rows := make([][]string, len(s.Top))
	for i, c := range s.Top {
		rows[i] = []string{c.Query, fmt.Sprintf("%.4f", c.Score), fmt.Sprint(c.Times)}
	}
	cliui.Table(w, []string{"EXAMPLE", "SCORE", "TIMES"}, rows)
}
