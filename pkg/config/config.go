package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// ErrInvalidConfig is returned by Validate and wraps every value error.
var ErrInvalidConfig = errors.New("invalid config")

// orderedKeys lists every key in the TOML section layout order.
var orderedKeys = []string{
	"memory_bank.capacity",
	"memory_bank.stability_threshold",
	"replay.capacity",
	"replay.entropy_weight",
	"replay.confidence_weight",
	"replay.rarity_weight",
	"replay.seed",
	"replay.steps",
	"replay.batch_size",
	"replay.sample_every",
	"replay.replace",
	"bench.total_queries",
	"bench.unique_queries",
	"bench.tokens_per_inference",
	"bench.ms_per_inference",
	"bench.seed",
	"history.sqlite_path",
}

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .razor/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(orderedKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .razor/
// directory. If the file does not exist, returns NewDefaultConfig() so callers
// always receive a fully-populated Config. Fields set in the file override
// the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfigTOML(data)
}

// SaveConfig validates cfg and persists it to config.toml in the target
// .razor/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key or the result is invalid.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes over NewDefaultConfig(), so keys
// absent from data keep their defaults.
// Returns an error if the version field is not CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if err := cfg.checkVersion(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) checkVersion() error {
	if c.Version != CurrentV {
		return fmt.Errorf("%w: unsupported config version %d (expected %d)", ErrInvalidConfig, c.Version, CurrentV)
	}
	return nil
}

// Validate checks the same construction rules the memory bank, replay
// buffer and benchmark apply, so a bad file fails before any run starts.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if err := c.checkVersion(); err != nil {
		errs = append(errs, err)
	}

	if c.MemoryBank.Capacity <= 0 {
		add("memory_bank.capacity must be > 0, got %d", c.MemoryBank.Capacity)
	}
	if t := c.MemoryBank.StabilityThreshold; math.IsNaN(t) || t < 0 || t > 1 {
		add("memory_bank.stability_threshold must be within [0, 1], got %v", t)
	}

	if c.Replay.Capacity <= 0 {
		add("replay.capacity must be > 0, got %d", c.Replay.Capacity)
	}
	for _, w := range []struct {
		key   string
		value float64
	}{
		{"replay.entropy_weight", c.Replay.EntropyWeight},
		{"replay.confidence_weight", c.Replay.ConfidenceWeight},
		{"replay.rarity_weight", c.Replay.RarityWeight},
	} {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) || w.value < 0 {
			add("%s must be a non-negative number, got %v", w.key, w.value)
		}
	}
	if c.Replay.Steps < 0 {
		add("replay.steps must be >= 0, got %d", c.Replay.Steps)
	}
	if c.Replay.BatchSize <= 0 {
		add("replay.batch_size must be > 0, got %d", c.Replay.BatchSize)
	}
	if c.Replay.SampleEvery <= 0 {
		add("replay.sample_every must be > 0, got %d", c.Replay.SampleEvery)
	}

	if c.Bench.TotalQueries < 0 {
		add("bench.total_queries must be >= 0, got %d", c.Bench.TotalQueries)
	}
	if c.Bench.UniqueQueries <= 0 {
		add("bench.unique_queries must be > 0, got %d", c.Bench.UniqueQueries)
	}
	if c.Bench.TokensPerInference < 0 {
		add("bench.tokens_per_inference must be >= 0, got %d", c.Bench.TokensPerInference)
	}
	if c.Bench.MsPerInference < 0 {
		add("bench.ms_per_inference must be >= 0, got %d", c.Bench.MsPerInference)
	}

	return errors.Join(errs...)
}
