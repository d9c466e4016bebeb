package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --capacity
// on both "razor bench" and "razor replay", bound to different keys).
type Flag struct {
	// Name is the long flag name (e.g. "capacity").
	Name string

	// Shorthand is the one-letter short flag (e.g. "c"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "memory_bank.capacity").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBankCapacity       = "bank-capacity"
	FlagThreshold          = "threshold"
	FlagTotalQueries       = "total-queries"
	FlagUniqueQueries      = "unique-queries"
	FlagTokensPerInference = "tokens-per-inference"
	FlagMsPerInference     = "ms-per-inference"
	FlagBenchSeed          = "bench-seed"
	FlagSQLite             = "sqlite"

	FlagReplayCapacity   = "replay-capacity"
	FlagEntropyWeight    = "entropy-weight"
	FlagConfidenceWeight = "confidence-weight"
	FlagRarityWeight     = "rarity-weight"
	FlagReplaySeed       = "replay-seed"
	FlagSteps            = "steps"
	FlagBatchSize        = "batch-size"
	FlagSampleEvery      = "sample-every"
	FlagReplace          = "replace"
)

// Flags is the registry shared by every razor command.
var Flags = FlagSet{
	FlagBankCapacity:       {Name: "capacity", Shorthand: "c", ViperKey: "memory_bank.capacity", Description: "Maximum number of memory bank entries"},
	FlagThreshold:          {Name: "threshold", Shorthand: "t", ViperKey: "memory_bank.stability_threshold", Description: "Minimum confidence accepted by the memory bank"},
	FlagTotalQueries:       {Name: "total-queries", ViperKey: "bench.total_queries", Description: "Number of queries in the workload"},
	FlagUniqueQueries:      {Name: "unique-queries", ViperKey: "bench.unique_queries", Description: "Number of distinct queries (lower means more repetition)"},
	FlagTokensPerInference: {Name: "tokens-per-inference", ViperKey: "bench.tokens_per_inference", Description: "Assumed token cost of one inference"},
	FlagMsPerInference:     {Name: "ms-per-inference", ViperKey: "bench.ms_per_inference", Description: "Assumed latency of one inference in milliseconds"},
	FlagBenchSeed:          {Name: "seed", Shorthand: "s", ViperKey: "bench.seed", Description: "Workload seed"},
	FlagSQLite:             {Name: "sqlite", ViperKey: "history.sqlite_path", Description: "Path to the benchmark history database"},

	FlagReplayCapacity:   {Name: "capacity", Shorthand: "c", ViperKey: "replay.capacity", Description: "Maximum number of replay examples"},
	FlagEntropyWeight:    {Name: "entropy-weight", ViperKey: "replay.entropy_weight", Description: "Score weight of the example loss"},
	FlagConfidenceWeight: {Name: "confidence-weight", ViperKey: "replay.confidence_weight", Description: "Score weight of the example uncertainty"},
	FlagRarityWeight:     {Name: "rarity-weight", ViperKey: "replay.rarity_weight", Description: "Score weight of the example rarity"},
	FlagReplaySeed:       {Name: "seed", Shorthand: "s", ViperKey: "replay.seed", Description: "Sampling seed (0 for unseeded)"},
	FlagSteps:            {Name: "steps", ViperKey: "replay.steps", Description: "Number of examples to add"},
	FlagBatchSize:        {Name: "batch-size", Shorthand: "b", ViperKey: "replay.batch_size", Description: "Examples drawn per batch"},
	FlagSampleEvery:      {Name: "sample-every", ViperKey: "replay.sample_every", Description: "Steps between batches"},
	FlagReplace:          {Name: "replace", ViperKey: "replay.replace", Description: "Sample with replacement"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUint64Flag registers a uint64 flag on cmd from the given FlagSet.
func AddUint64Flag(cmd *cobra.Command, fs FlagSet, key string, target *uint64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Uint64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Uint64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, key string, target *float64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only the NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
