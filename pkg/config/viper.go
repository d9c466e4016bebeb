package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the RAZOR_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RAZOR_MEMORY_BANK_CAPACITY, RAZOR_BENCH_SEED, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("RAZOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper assembles a validated Config from the merged viper state.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		MemoryBank: MemoryBankConfig{
			Capacity:           v.GetInt("memory_bank.capacity"),
			StabilityThreshold: v.GetFloat64("memory_bank.stability_threshold"),
		},
		Replay: ReplayConfig{
			Capacity:         v.GetInt("replay.capacity"),
			EntropyWeight:    v.GetFloat64("replay.entropy_weight"),
			ConfidenceWeight: v.GetFloat64("replay.confidence_weight"),
			RarityWeight:     v.GetFloat64("replay.rarity_weight"),
			Seed:             v.GetUint64("replay.seed"),
			Steps:            v.GetInt("replay.steps"),
			BatchSize:        v.GetInt("replay.batch_size"),
			SampleEvery:      v.GetInt("replay.sample_every"),
			Replace:          v.GetBool("replay.replace"),
		},
		Bench: BenchConfig{
			TotalQueries:       v.GetInt("bench.total_queries"),
			UniqueQueries:      v.GetInt("bench.unique_queries"),
			TokensPerInference: v.GetInt("bench.tokens_per_inference"),
			MsPerInference:     v.GetInt("bench.ms_per_inference"),
			Seed:               v.GetUint64("bench.seed"),
		},
		History: HistoryConfig{
			SQLitePath: v.GetString("history.sqlite_path"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("memory_bank.capacity", d.MemoryBank.Capacity)
	v.SetDefault("memory_bank.stability_threshold", d.MemoryBank.StabilityThreshold)

	v.SetDefault("replay.capacity", d.Replay.Capacity)
	v.SetDefault("replay.entropy_weight", d.Replay.EntropyWeight)
	v.SetDefault("replay.confidence_weight", d.Replay.ConfidenceWeight)
	v.SetDefault("replay.rarity_weight", d.Replay.RarityWeight)
	v.SetDefault("replay.seed", d.Replay.Seed)
	v.SetDefault("replay.steps", d.Replay.Steps)
	v.SetDefault("replay.batch_size", d.Replay.BatchSize)
	v.SetDefault("replay.sample_every", d.Replay.SampleEvery)
	v.SetDefault("replay.replace", d.Replay.Replace)

	v.SetDefault("bench.total_queries", d.Bench.TotalQueries)
	v.SetDefault("bench.unique_queries", d.Bench.UniqueQueries)
	v.SetDefault("bench.tokens_per_inference", d.Bench.TokensPerInference)
	v.SetDefault("bench.ms_per_inference", d.Bench.MsPerInference)
	v.SetDefault("bench.seed", d.Bench.Seed)

	v.SetDefault("history.sqlite_path", d.History.SQLitePath)
}
