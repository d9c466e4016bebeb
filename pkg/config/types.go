package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent razor configuration stored as config.toml
// in the .razor/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	MemoryBank MemoryBankConfig `toml:"memory_bank"`
	Replay     ReplayConfig     `toml:"replay"`
	Bench      BenchConfig      `toml:"bench"`
	History    HistoryConfig    `toml:"history"`
}

// MemoryBankConfig sizes and gates the memory bank.
type MemoryBankConfig struct {
	Capacity           int     `toml:"capacity"`
	StabilityThreshold float64 `toml:"stability_threshold"`
}

// ReplayConfig holds replay buffer and replay simulation settings.
type ReplayConfig struct {
	Capacity         int     `toml:"capacity"`
	EntropyWeight    float64 `toml:"entropy_weight"`
	ConfidenceWeight float64 `toml:"confidence_weight"`
	RarityWeight     float64 `toml:"rarity_weight"`

	// Seed fixes the sampling source. Zero leaves sampling unseeded.
	Seed uint64 `toml:"seed"`

	Steps       int  `toml:"steps"`
	BatchSize   int  `toml:"batch_size"`
	SampleEvery int  `toml:"sample_every"`
	Replace     bool `toml:"replace"`
}

// BenchConfig holds the memory gate benchmark workload.
type BenchConfig struct {
	TotalQueries       int    `toml:"total_queries"`
	UniqueQueries      int    `toml:"unique_queries"`
	TokensPerInference int    `toml:"tokens_per_inference"`
	MsPerInference     int    `toml:"ms_per_inference"`
	Seed               uint64 `toml:"seed"`
}

// HistoryConfig locates the benchmark history database. An empty path means
// history.sqlite inside the .razor/ directory.
type HistoryConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(key string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatKey(key string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = f
			return nil
		},
	}
}

func uint64Key(key string, field func(c *Config) *uint64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatUint(*field(c), 10) },
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"memory_bank.capacity": intKey("memory_bank.capacity",
		func(c *Config) *int { return &c.MemoryBank.Capacity }),
	"memory_bank.stability_threshold": floatKey("memory_bank.stability_threshold",
		func(c *Config) *float64 { return &c.MemoryBank.StabilityThreshold }),

	"replay.capacity": intKey("replay.capacity",
		func(c *Config) *int { return &c.Replay.Capacity }),
	"replay.entropy_weight": floatKey("replay.entropy_weight",
		func(c *Config) *float64 { return &c.Replay.EntropyWeight }),
	"replay.confidence_weight": floatKey("replay.confidence_weight",
		func(c *Config) *float64 { return &c.Replay.ConfidenceWeight }),
	"replay.rarity_weight": floatKey("replay.rarity_weight",
		func(c *Config) *float64 { return &c.Replay.RarityWeight }),
	"replay.seed": uint64Key("replay.seed",
		func(c *Config) *uint64 { return &c.Replay.Seed }),
	"replay.steps": intKey("replay.steps",
		func(c *Config) *int { return &c.Replay.Steps }),
	"replay.batch_size": intKey("replay.batch_size",
		func(c *Config) *int { return &c.Replay.BatchSize }),
	"replay.sample_every": intKey("replay.sample_every",
		func(c *Config) *int { return &c.Replay.SampleEvery }),
	"replay.replace": {
		get: func(c *Config) string { return strconv.FormatBool(c.Replay.Replace) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for replay.replace: %w", err)
			}
			c.Replay.Replace = b
			return nil
		},
	},

	"bench.total_queries": intKey("bench.total_queries",
		func(c *Config) *int { return &c.Bench.TotalQueries }),
	"bench.unique_queries": intKey("bench.unique_queries",
		func(c *Config) *int { return &c.Bench.UniqueQueries }),
	"bench.tokens_per_inference": intKey("bench.tokens_per_inference",
		func(c *Config) *int { return &c.Bench.TokensPerInference }),
	"bench.ms_per_inference": intKey("bench.ms_per_inference",
		func(c *Config) *int { return &c.Bench.MsPerInference }),
	"bench.seed": uint64Key("bench.seed",
		func(c *Config) *uint64 { return &c.Bench.Seed }),

	"history.sqlite_path": {
		get: func(c *Config) string { return c.History.SQLitePath },
		set: func(c *Config, v string) error { c.History.SQLitePath = v; return nil },
	},
}
