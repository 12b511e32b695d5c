// Package config loads and validates the bot's YAML configuration.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/quantra-lab/quantra/internal/executor"
	"github.com/quantra-lab/quantra/internal/risk"
	"github.com/quantra-lab/quantra/internal/strategy"
	"github.com/quantra-lab/quantra/pkg/errors"
	"gopkg.in/yaml.v3"
)

// JournalConfig controls the trade journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Persist orders and fills to DuckDB"`
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `yaml:"path" json:"path" jsonschema:"title=Path,description=DuckDB database file path; empty for in-memory"`
}

// LoopConfig controls the bot's main loop.
type LoopConfig struct {
	Symbol          string `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Trading pair the loop operates on"`
	IntervalSeconds int    `yaml:"interval_seconds" json:"interval_seconds" validate:"gt=0" jsonschema:"title=Interval Seconds,description=Seconds between loop iterations,minimum=1"`
	// MaxRuns bounds the number of iterations. Zero means run until
	// interrupted.
	MaxRuns    int    `yaml:"max_runs" json:"max_runs" validate:"gte=0" jsonschema:"title=Max Runs,description=Iteration cap; 0 runs until interrupted,minimum=0"`
	FetchLimit int    `yaml:"fetch_limit" json:"fetch_limit" validate:"gt=0" jsonschema:"title=Fetch Limit,description=Candles fetched per iteration,minimum=1"`
	Timeframe  string `yaml:"timeframe" json:"timeframe" validate:"required" jsonschema:"title=Timeframe,description=Candle timeframe such as 1m or 1h"`
}

// BotConfig is the root configuration document.
type BotConfig struct {
	Engine     executor.Config  `yaml:"engine" json:"engine"`
	Journal    JournalConfig    `yaml:"journal" json:"journal"`
	Risk       risk.Limits      `yaml:"risk" json:"risk"`
	Strategies strategy.Configs `yaml:"strategies" json:"strategies"`
	Loop       LoopConfig       `yaml:"loop" json:"loop"`
	// Seed drives every random component for reproducible runs.
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,description=Seed for the simulated venue and mock data"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() BotConfig {
	return BotConfig{
		Engine:     executor.DefaultConfig(),
		Journal:    JournalConfig{Enabled: true},
		Risk:       risk.DefaultLimits(),
		Strategies: strategy.DefaultConfigs(),
		Loop: LoopConfig{
			Symbol:          "BTC/USD",
			IntervalSeconds: 60,
			MaxRuns:         10,
			FetchLimit:      100,
			Timeframe:       "1h",
		},
		Seed: 1,
	}
}

var validate = validator.New()

// Validate checks the whole document.
func (c BotConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid bot configuration", err)
	}

	return c.Strategies.Validate()
}

// LoadConfig reads a YAML file into the defaults, so omitted keys keep their
// reference values, and validates the result.
func LoadConfig(path string) (BotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BotConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML bytes on top of the defaults.
func ParseConfig(data []byte) (BotConfig, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return BotConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return BotConfig{}, err
	}

	return config, nil
}

// GenerateSchemaJSON returns the JSON schema for BotConfig, for editor
// completion of config files.
func GenerateSchemaJSON() (string, error) {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = true
	schema := reflector.Reflect(BotConfig{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config schema", err)
	}

	return string(data), nil
}
