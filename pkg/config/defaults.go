package config

const (
	defaultBankCapacity       = 10_000
	defaultStabilityThreshold = 0.95

	defaultReplayCapacity   = 5_000
	defaultEntropyWeight    = 0.5
	defaultConfidenceWeight = 0.3
	defaultRarityWeight     = 0.2

	defaultReplaySteps       = 2000
	defaultReplayBatchSize   = 32
	defaultReplaySampleEvery = 10

	defaultTotalQueries       = 1000
	defaultUniqueQueries      = 200
	defaultTokensPerInference = 800
	defaultMsPerInference     = 600
	defaultBenchSeed          = 123
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		MemoryBank: MemoryBankConfig{
			Capacity:           defaultBankCapacity,
			StabilityThreshold: defaultStabilityThreshold,
		},
		Replay: ReplayConfig{
			Capacity:         defaultReplayCapacity,
			EntropyWeight:    defaultEntropyWeight,
			ConfidenceWeight: defaultConfidenceWeight,
			RarityWeight:     defaultRarityWeight,
			Steps:            defaultReplaySteps,
			BatchSize:        defaultReplayBatchSize,
			SampleEvery:      defaultReplaySampleEvery,
		},
		Bench: BenchConfig{
			TotalQueries:       defaultTotalQueries,
			UniqueQueries:      defaultUniqueQueries,
			TokensPerInference: defaultTokensPerInference,
			MsPerInference:     defaultMsPerInference,
			Seed:               defaultBenchSeed,
		},
	}
}
