package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quantdesk/desk/backtest"
	"github.com/quantdesk/desk/signal"
)

// Config represents the complete desk configuration
type Config struct {
	Owner    string               `json:"owner" yaml:"owner"`
	Journal  JournalConfig        `json:"journal" yaml:"journal"`
	Signal   signal.Config        `json:"signal" yaml:"signal"`
	Backtest backtest.Assumptions `json:"backtest" yaml:"backtest"`
	Sweep    SweepConfig          `json:"sweep" yaml:"sweep"`
}

// JournalConfig contains experience ledger parameters
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// SweepConfig contains threshold sweep defaults
type SweepConfig struct {
	BullishValues    []float64 `json:"bullish_values" yaml:"bullish_values"`
	BearishValues    []float64 `json:"bearish_values" yaml:"bearish_values"`
	StrongMoveValues []float64 `json:"strong_move_values" yaml:"strong_move_values"`
	MaxVetoPct       float64   `json:"max_veto_pct" yaml:"max_veto_pct"`
	TopK             int       `json:"top_k" yaml:"top_k"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	if c.Signal.BullishThreshold <= 0 {
		return fmt.Errorf("signal.bullish_threshold must be positive")
	}
	if c.Signal.BearishThreshold >= 0 {
		return fmt.Errorf("signal.bearish_threshold must be negative")
	}
	if c.Signal.StrongMoveThreshold <= 0 {
		return fmt.Errorf("signal.strong_move_threshold must be positive")
	}
	if c.Signal.MaxSpreadBps <= 0 {
		return fmt.Errorf("signal.max_spread_bps must be positive")
	}
	if c.Signal.ModelVersion == "" {
		return fmt.Errorf("signal.model_version is required")
	}
	if c.Backtest.TransactionCostBps < 0 || c.Backtest.SlippageBps < 0 {
		return fmt.Errorf("backtest friction settings must be non-negative")
	}
	if c.Backtest.AnnualizationFactor <= 0 {
		return fmt.Errorf("backtest.annualization_factor must be positive")
	}
	if c.Sweep.MaxVetoPct < 0 || c.Sweep.MaxVetoPct > 100 {
		return fmt.Errorf("sweep.max_veto_pct must be between 0 and 100")
	}
	if c.Sweep.TopK < 1 {
		return fmt.Errorf("sweep.top_k must be at least 1")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Owner: "desk",
		Journal: JournalConfig{
			DBPath: "./desk.db",
		},
		Signal:   signal.DefaultConfig(),
		Backtest: backtest.DefaultAssumptions(),
		Sweep: SweepConfig{
			BullishValues:    []float64{0.3, 0.4, 0.5, 0.6},
			BearishValues:    []float64{-0.3, -0.4, -0.5, -0.6},
			StrongMoveValues: []float64{0.8, 1.0},
			MaxVetoPct:       30.0,
			TopK:             5,
		},
	}
}
